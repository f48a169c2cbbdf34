package extract

const bobCreditSMS = "Rs.6000 Credited to A/c ...9212 thru UPI/511857530160 by atodariyadharme. " +
	"Total Bal:Rs.6106.44CR. Avlbl Amt:Rs.6106.44(28-04-2025 07:40:39) - Bank of Baroda"

const bobDebitSMS = "Rs 40.00 debited from A/C XXXXXX9212 and credited to rsp9974-1@okicici " +
	"UPI Ref:409594145449. Not you? Call 18005700 -BOB"

const (
	jioDataSMS          = "50% Daily Data quota used as on 21-Nov-24 22:13. Jio Number : 8487005334"
	jugnooOTP           = "Your Jugnoo OTP is 7481 and it is valid till 6:28 PM. Please do not share this OTP with anyone."
	debitWithBalanceSMS = "Rs 500 debited from A/c XX1234 on 01-02-25 at AMAZON RETAIL. Avl Bal:Rs 10,000"
	debitNearBalanceSMS = "Rs 500 debited from A/c XX1234 on 05-Mar. Avl Bal Rs 3000"
)
