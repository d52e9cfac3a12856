package service

import (
	"context"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/rpc"
)

type NodeService interface {
	Health(ctx context.Context) HealthReport
	BlockchainInfo(ctx context.Context) (rpc.BlockchainInfo, error)
}

type NodeClient interface {
	GetBlockchainInfo(ctx context.Context) (rpc.BlockchainInfo, error)
	GetNetworkInfo(ctx context.Context) (rpc.NetworkInfo, error)
	GetWalletInfo(ctx context.Context) (rpc.WalletInfo, error)
}

type Node struct {
	client NodeClient
}

func NewNode(client NodeClient) *Node {
	return &Node{client: client}
}

type HealthReport struct {
	Status     string              `json:"status"`
	Error      string              `json:"error,omitempty"`
	Blockchain *rpc.BlockchainInfo `json:"blockchain,omitempty"`
	Network    *rpc.NetworkInfo    `json:"network,omitempty"`
	Wallet     *rpc.WalletInfo     `json:"wallet,omitempty"`
}

// Health aggregates the node views the mobile client cares about. A failing
// node yields an unhealthy report, not an error.
func (n *Node) Health(ctx context.Context) HealthReport {
	blockchain, err := n.client.GetBlockchainInfo(ctx)
	if err != nil {
		return HealthReport{Status: "unhealthy", Error: err.Error()}
	}
	network, err := n.client.GetNetworkInfo(ctx)
	if err != nil {
		return HealthReport{Status: "unhealthy", Error: err.Error()}
	}
	wallet, err := n.client.GetWalletInfo(ctx)
	if err != nil {
		return HealthReport{Status: "unhealthy", Error: err.Error()}
	}
	return HealthReport{
		Status:     "healthy",
		Blockchain: &blockchain,
		Network:    &network,
		Wallet:     &wallet,
	}
}

func (n *Node) BlockchainInfo(ctx context.Context) (rpc.BlockchainInfo, error) {
	return n.client.GetBlockchainInfo(ctx)
}
