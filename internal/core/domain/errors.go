package domain

import (
	errorsmod "cosmossdk.io/errors"
	"google.golang.org/grpc/codes"
)

// ModuleName is the codespace of the ledger errors.
const ModuleName = "inheritance"

var (
	ErrNotOwner          = errorsmod.RegisterWithGRPCCode(ModuleName, 2, codes.PermissionDenied, "not owner")
	ErrNotHeir           = errorsmod.RegisterWithGRPCCode(ModuleName, 3, codes.PermissionDenied, "not heir")
	ErrInsufficientFunds = errorsmod.RegisterWithGRPCCode(ModuleName, 4, codes.FailedPrecondition, "Not enough Ether in contract!")
	ErrOwnerStillActive  = errorsmod.RegisterWithGRPCCode(ModuleName, 5, codes.FailedPrecondition, "owner still active")
	ErrInvalidHeir       = errorsmod.RegisterWithGRPCCode(ModuleName, 6, codes.InvalidArgument, "invalid heir")
	ErrInvalidOwner      = errorsmod.RegisterWithGRPCCode(ModuleName, 7, codes.InvalidArgument, "invalid owner")
	ErrBalanceOverflow   = errorsmod.RegisterWithGRPCCode(ModuleName, 8, codes.OutOfRange, "balance overflow")
	ErrInvalidAmount     = errorsmod.RegisterWithGRPCCode(ModuleName, 9, codes.InvalidArgument, "invalid amount")
)
