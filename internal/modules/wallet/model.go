// README: Wallet ledger entries and driver payout profile.
package wallet

import "oortgo/internal/types"

type Kind string

const (
	KindEarning    Kind = "EARNING"
	KindCommission Kind = "COMMISSION"
	KindPayout     Kind = "PAYOUT"
	KindRefund     Kind = "REFUND"
	KindFailed     Kind = "FAILED"
)

// CommissionRate is the platform share deducted from every earning.
const CommissionRate = 0.1

// Transaction is an append-only ledger entry. Amount is signed and in
// currency units; Timestamp is milliseconds since the Unix epoch.
type Transaction struct {
	ID        types.ID `json:"id"`
	Kind      Kind     `json:"type"`
	Amount    float64  `json:"amount"`
	Timestamp int64    `json:"timestamp"`
}

type BankDetails struct {
	AccountName   string `json:"accountName"`
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	IFSC          string `json:"ifsc"`
	UPIID         string `json:"upiId"`
}

// Profile is what the driver saves from the account screen. Photo and UPIQR
// are data URLs; empty means "keep what is stored".
type Profile struct {
	Bank  BankDetails `json:"bank"`
	Photo string      `json:"photo,omitempty"`
	UPIQR string      `json:"upiQr,omitempty"`
}

// DriverDetails is the driver card shown to the passenger during a live trip.
type DriverDetails struct {
	Name          string  `json:"name"`
	Photo         string  `json:"photo"`
	Phone         string  `json:"phone"`
	VehicleNumber string  `json:"vehicleNumber"`
	Rating        float64 `json:"rating"`
	BankName      string  `json:"bankName"`
	AccountNumber string  `json:"accountNumber"`
	IFSC          string  `json:"ifsc"`
	UPIID         string  `json:"upiId"`
	UPIQR         string  `json:"upiQr,omitempty"`
}

// DefaultBankDetails is shown until the driver saves a profile.
var DefaultBankDetails = BankDetails{
	AccountName:   "Rahul Kumar",
	BankName:      "HDFC Bank",
	AccountNumber: "5010042XXXX4492",
	IFSC:          "HDFC0001234",
	UPIID:         "rahulk@upi",
}

const (
	DefaultPhoto         = "https://i.pravatar.cc/150?u=rahul"
	DefaultPhone         = "+91 9988776655"
	DefaultVehicleNumber = "DL 01 CP 4492"
	DefaultRating        = 4.8
)

// NetBalance sums every entry except FAILED ones.
func NetBalance(txs []Transaction) float64 {
	var total float64
	for _, tx := range txs {
		if tx.Kind == KindFailed {
			continue
		}
		total += tx.Amount
	}
	return total
}

// DemoHistory is the ledger an empty wallet is seeded with, relative to now (ms).
func DemoHistory(nowMs int64) []Transaction {
	const hour = int64(3600000)
	return []Transaction{
		{ID: "t1", Kind: KindEarning, Amount: 450, Timestamp: nowMs - 24*hour},
		{ID: "t2", Kind: KindCommission, Amount: -45, Timestamp: nowMs - 24*hour},
		{ID: "t3", Kind: KindEarning, Amount: 320, Timestamp: nowMs - 12*hour},
		{ID: "t4", Kind: KindCommission, Amount: -32, Timestamp: nowMs - 12*hour},
		{ID: "t5", Kind: KindPayout, Amount: -500, Timestamp: nowMs - 6*hour},
		{ID: "t6", Kind: KindEarning, Amount: 550, Timestamp: nowMs - 3*hour},
		{ID: "t7", Kind: KindCommission, Amount: -55, Timestamp: nowMs - 3*hour},
	}
}
