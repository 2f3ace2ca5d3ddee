package detector

// scamKeywords is the fixed scam vocabulary. Order matters: signals are
// reported in declaration order.
var scamKeywords = []string{
	"otp",
	"kyc",
	"refund",
	"verification",
	"gift card",
	"fee",
	"processing charge",
	"wire",
	"bank transfer",
	"upi",
	"ifsc",
	"crypto",
	"wallet",
	"payment link",
	"secure link",
	"one-time password",
	"settlement",
	"compensation",
	"prize",
	"insurance",
}

// urgencyPhrases push the score up when the sender applies time pressure.
var urgencyPhrases = []string{
	"immediately",
	"urgent",
	"right now",
	"asap",
	"today",
	"instantly",
}

// accountHints is the signal subset that forces an immediate HARVEST hint.
var accountHints = map[string]struct{}{
	"upi":            {},
	"ifsc":           {},
	"bank transfer":  {},
	"account number": {},
	"iban":           {},
	"routing":        {},
	"swift":          {},
}
