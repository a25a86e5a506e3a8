package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	domainErrors "github.com/payneu/gateway/internal/domain/errors"
)

// erc20ABI covers the single ERC-20 call the gateway issues.
const erc20ABI = `[{"name":"approve","type":"function","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}]`

// Gateway holds the connected account and submits/observes approval
// transactions on its behalf.
type Gateway interface {
	Address() common.Address
	ApproveSpend(ctx context.Context, token, spender common.Address, amount *big.Int) (common.Hash, error)
	Confirmations(ctx context.Context, tx common.Hash) (uint64, error)
	Ping(ctx context.Context) error
}

// EthGateway implements Gateway over an EVM JSON-RPC endpoint using a keyed
// transactor.
type EthGateway struct {
	client    *ethclient.Client
	erc20     abi.ABI
	chainID   *big.Int
	address   common.Address
	transacts *bind.TransactOpts
	logger    *slog.Logger
}

// Config carries connection settings for the gateway account.
type Config struct {
	RPCURL        string
	PrivateKeyHex string
}

// NewEthGateway dials the RPC endpoint and prepares a transactor for the
// configured account.
func NewEthGateway(ctx context.Context, cfg Config, logger *slog.Logger) (*EthGateway, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	if cfg.PrivateKeyHex == "" {
		return nil, fmt.Errorf("private key is required for submitting approvals")
	}

	pk, err := parsePrivateKey(cfg.PrivateKeyHex)
	if err != nil {
		return nil, err
	}

	cli, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}

	parsedABI, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}

	chainID, err := cli.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch chain id: %w", err)
	}

	txOpts, err := bind.NewKeyedTransactorWithChainID(pk, chainID)
	if err != nil {
		return nil, fmt.Errorf("transactor: %w", err)
	}
	txOpts.Context = ctx
	txOpts.GasLimit = 0 // let node estimate
	txOpts.GasPrice = nil
	txOpts.Nonce = nil

	return &EthGateway{
		client:    cli,
		erc20:     parsedABI,
		chainID:   chainID,
		address:   crypto.PubkeyToAddress(pk.PublicKey),
		transacts: txOpts,
		logger:    logger,
	}, nil
}

func parsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	hexKey = strings.TrimSpace(strings.TrimPrefix(hexKey, "0x"))
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return key, nil
}

// Address returns the connected account.
func (g *EthGateway) Address() common.Address {
	return g.address
}

// ApproveSpend submits an ERC-20 approve for the given spender and amount
// against the token contract. It returns as soon as the transaction is
// broadcast; confirmation depth is observed separately.
func (g *EthGateway) ApproveSpend(ctx context.Context, token, spender common.Address, amount *big.Int) (common.Hash, error) {
	if amount == nil || amount.Sign() <= 0 {
		return common.Hash{}, domainErrors.ErrInvalidAmount
	}

	bound := bind.NewBoundContract(token, g.erc20, g.client, g.client, g.client)

	opts := *g.transacts
	opts.Context = ctx

	tx, err := bound.Transact(&opts, "approve", spender, amount)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: %v", domainErrors.ErrApprovalRejected, err)
	}

	g.logger.Info("approval submitted",
		slog.String("token", token.Hex()),
		slog.String("spender", spender.Hex()),
		slog.String("amount", amount.String()),
		slog.String("tx", tx.Hash().Hex()),
	)

	return tx.Hash(), nil
}

// Confirmations reports how many blocks deep the transaction is. A pending or
// unknown transaction reports zero; a reverted approval surfaces as
// ErrApprovalRejected.
func (g *EthGateway) Confirmations(ctx context.Context, tx common.Hash) (uint64, error) {
	receipt, err := g.client.TransactionReceipt(ctx, tx)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("fetch receipt: %w", err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return 0, fmt.Errorf("%w: transaction reverted", domainErrors.ErrApprovalRejected)
	}

	head, err := g.client.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch head block: %w", err)
	}

	return confirmationDepth(head, receipt.BlockNumber.Uint64()), nil
}

// Ping verifies the RPC endpoint is reachable.
func (g *EthGateway) Ping(ctx context.Context) error {
	if g.client == nil {
		return fmt.Errorf("rpc client not configured")
	}
	_, err := g.client.BlockNumber(ctx)
	return err
}

// confirmationDepth counts the inclusion block itself as one confirmation.
func confirmationDepth(head, included uint64) uint64 {
	if head < included {
		return 0
	}
	return head - included + 1
}
