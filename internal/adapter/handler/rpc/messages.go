package rpc

type DeployRequest struct {
	Owner string `json:"owner"`
	Heir  string `json:"heir"`
}

type DepositRequest struct {
	LedgerId string `json:"ledger_id"`
	From     string `json:"from"`
	Amount   string `json:"amount"`
}

type WithdrawRequest struct {
	RequestId string `json:"request_id"`
	LedgerId  string `json:"ledger_id"`
	Caller    string `json:"caller"`
	Amount    string `json:"amount"`
}

type InheritRequest struct {
	RequestId string `json:"request_id"`
	LedgerId  string `json:"ledger_id"`
	Caller    string `json:"caller"`
	NewHeir   string `json:"new_heir"`
}

type GetLedgerRequest struct {
	LedgerId string `json:"ledger_id"`
}

type LedgerReply struct {
	Id                string `json:"id"`
	Owner             string `json:"owner"`
	Heir              string `json:"heir"`
	LastWithdrawnTime int64  `json:"last_withdrawn_time"`
	Balance           string `json:"balance"`
	State             string `json:"state"`
	InheritableAt     int64  `json:"inheritable_at"`
	Version           int64  `json:"version"`
}

func (x *WithdrawRequest) GetRequestId() string {
	if x != nil {
		return x.RequestId
	}
	return ""
}

func (x *InheritRequest) GetRequestId() string {
	if x != nil {
		return x.RequestId
	}
	return ""
}
