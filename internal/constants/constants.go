package constants

// Audit log actions.
const (
	Create   = "CREATE"
	Verify   = "VERIFY"
	MarkPaid = "MARK_PAID"
	Deduct   = "DEDUCT"
	Apply    = "APPLY"
	Submit   = "SUBMIT"
	Approve  = "APPROVE"
	Cancel   = "CANCEL"
	Withdraw = "WITHDRAW"
	Deposit  = "DEPOSIT"
	Initiate = "INITIATE"
	Promote  = "PROMOTE"
)

// PerformedBy value for writes issued by background sweeps.
const System = "system"
