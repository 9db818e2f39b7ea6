package handler

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/inheritance/internal/adapter/handler/rpc"
	"github.com/rl1809/inheritance/internal/core/domain"
	"github.com/rl1809/inheritance/internal/core/service"
)

type GRPCHandler struct {
	rpc.UnimplementedLedgerServiceServer
	ledgerService *service.LedgerService
	log           *zap.Logger
}

func NewGRPCHandler(ledgerService *service.LedgerService, log *zap.Logger) *GRPCHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &GRPCHandler{ledgerService: ledgerService, log: log}
}

func (h *GRPCHandler) Deploy(ctx context.Context, req *rpc.DeployRequest) (*rpc.LedgerReply, error) {
	owner, err := parseAddress("owner", req.Owner)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	heir, err := parseAddress("heir", req.Heir)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return h.reply(h.ledgerService.Deploy(ctx, owner, heir))
}

func (h *GRPCHandler) Deposit(ctx context.Context, req *rpc.DepositRequest) (*rpc.LedgerReply, error) {
	from, err := parseAddress("from", req.From)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	return h.reply(h.ledgerService.Deposit(ctx, req.LedgerId, from, amount))
}

func (h *GRPCHandler) Withdraw(ctx context.Context, req *rpc.WithdrawRequest) (*rpc.LedgerReply, error) {
	caller, err := parseAddress("caller", req.Caller)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	return h.reply(h.ledgerService.Withdraw(ctx, req.GetRequestId(), req.LedgerId, caller, amount))
}

func (h *GRPCHandler) Inherit(ctx context.Context, req *rpc.InheritRequest) (*rpc.LedgerReply, error) {
	var caller, newHeir common.Address
	var err error
	if caller, err = parseAddress("caller", req.Caller); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if newHeir, err = parseAddress("new_heir", req.NewHeir); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return h.reply(h.ledgerService.Inherit(ctx, req.GetRequestId(), req.LedgerId, caller, newHeir))
}

func (h *GRPCHandler) GetLedger(ctx context.Context, req *rpc.GetLedgerRequest) (*rpc.LedgerReply, error) {
	return h.reply(h.ledgerService.Get(ctx, req.LedgerId))
}

// reply converts a service result. Ledger errors carry their own gRPC codes;
// anything else is reported as internal.
func (h *GRPCHandler) reply(l *domain.Ledger, err error) (*rpc.LedgerReply, error) {
	if err != nil {
		if _, ok := status.FromError(err); ok {
			return nil, err
		}
		h.log.Error("request failed", zap.Error(err))
		return nil, status.Error(codes.Internal, "internal error")
	}
	v := newLedgerView(l, h.ledgerService.Now())
	return &rpc.LedgerReply{
		Id:                v.ID,
		Owner:             v.Owner,
		Heir:              v.Heir,
		LastWithdrawnTime: v.LastWithdrawnTime,
		Balance:           v.Balance,
		State:             v.State,
		InheritableAt:     v.InheritableAt,
		Version:           int64(v.Version),
	}, nil
}
