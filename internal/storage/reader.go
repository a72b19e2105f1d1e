package storage

type Reader struct {
	Accounts     IAccountTable
	Limits       ILimitTable
	Transactions ITransactionTable
	Transfers    ITransferTable
}
