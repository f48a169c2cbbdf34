package messages

// Sample names an SMS in the test catalog.
type Sample string

// String returns the sample name.
func (s Sample) String() string {
	return string(s)
}

// Catalog samples.
const (
	SampleBOBCredit        Sample = "bob-credit"
	SampleBOBDebit         Sample = "bob-debit"
	SampleDebitWithBalance Sample = "debit-with-balance"
	SampleJioData          Sample = "jio-data"
	SampleJugnooOTP        Sample = "jugnoo-otp"
	SampleLoanSpam         Sample = "loan-spam"
)

type sample struct {
	sender string
	body   string
}

var catalog = map[Sample]sample{
	SampleBOBCredit: {
		sender: "VM-BOBTXN",
		body: "Rs.6000 Credited to A/c ...9212 thru UPI/511857530160 by atodariyadharme. " +
			"Total Bal:Rs.6106.44CR. Avlbl Amt:Rs.6106.44(28-04-2025 07:40:39) - Bank of Baroda",
	},
	SampleBOBDebit: {
		sender: "AD-BOBSMS",
		body: "Rs 40.00 debited from A/C XXXXXX9212 and credited to rsp9974-1@okicici " +
			"UPI Ref:409594145449. Not you? Call 18005700 -BOB",
	},
	SampleDebitWithBalance: {
		sender: "VK-HDFCBK",
		body:   "Rs 500 debited from A/c XX1234 on 01-02-25 at AMAZON RETAIL. Avl Bal:Rs 10,000",
	},
	SampleJioData: {
		sender: "JX-JIOPAY",
		body:   "50% Daily Data quota used as on 21-Nov-24 22:13. Jio Number : 8487005334",
	},
	SampleJugnooOTP: {
		sender: "VM-JUGNOO",
		body:   "Your Jugnoo OTP is 7481 and it is valid till 6:28 PM. Please do not share this OTP with anyone.",
	},
	SampleLoanSpam: {
		sender: "VM-LOANOF",
		body:   "Your instant loan of Rs 50000 is ready to be credited to your bank account",
	},
}

// Body returns the message text of a sample.
func Body(s Sample) string {
	return catalog[s].body
}

// Sender returns the sender id of a sample.
func Sender(s Sample) string {
	return catalog[s].sender
}
