package midtrans

import (
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

type (
	// Gateway is the part of Midtrans the payment flow talks to.
	Gateway interface {
		CreateTransaction(req *snap.Request) (*snap.Response, error)
		CheckTransaction(gatewayOrderID string) (*coreapi.TransactionStatusResponse, error)
	}

	midtransGateway struct {
		snap snap.Client
		core coreapi.Client
	}
)

func NewMidtransGateway(serverKey string, isProd bool) Gateway {
	env := midtrans.Sandbox
	if isProd {
		env = midtrans.Production
	}

	g := &midtransGateway{}
	g.snap.New(serverKey, env)
	g.core.New(serverKey, env)
	return g
}

func (g *midtransGateway) CreateTransaction(req *snap.Request) (*snap.Response, error) {
	res, merr := g.snap.CreateTransaction(req)
	if merr != nil {
		return nil, merr
	}
	return res, nil
}

func (g *midtransGateway) CheckTransaction(gatewayOrderID string) (*coreapi.TransactionStatusResponse, error) {
	res, merr := g.core.CheckTransaction(gatewayOrderID)
	if merr != nil {
		return nil, merr
	}
	return res, nil
}
