package messages

// Fixture is a predefined inbox for a test scenario.
type Fixture interface {
	Name() string
	Description() string
	Samples() []Sample
}

type fixture struct {
	name        string
	description string
	samples     []Sample
}

func (f *fixture) Name() string        { return f.name }
func (f *fixture) Description() string { return f.description }
func (f *fixture) Samples() []Sample   { return f.samples }

// Predefined fixtures.
var (
	// FixtureBankOnly holds distinct transaction alerts.
	FixtureBankOnly = &fixture{
		name:        "BankOnly",
		description: "Distinct bank transaction alerts",
		samples: []Sample{
			SampleBOBCredit,
			SampleBOBDebit,
			SampleDebitWithBalance,
		},
	}

	// FixtureMixedInbox mixes transactions with every kind of noise.
	FixtureMixedInbox = &fixture{
		name:        "MixedInbox",
		description: "Transactions interleaved with telecom, OTP and spam messages",
		samples: []Sample{
			SampleBOBCredit,
			SampleJioData,
			SampleBOBDebit,
			SampleJugnooOTP,
			SampleLoanSpam,
			SampleDebitWithBalance,
		},
	}

	// FixtureDuplicateAlerts repeats one credit, as banks do when an alert
	// is resent.
	FixtureDuplicateAlerts = &fixture{
		name:        "DuplicateAlerts",
		description: "The same credit alert delivered twice",
		samples: []Sample{
			SampleBOBCredit,
			SampleBOBCredit,
		},
	}
)
