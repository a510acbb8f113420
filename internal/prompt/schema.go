package prompt

// Schema describes one collection for the /schemas endpoint. It mirrors the
// schema section of the system prompt but is served as structured JSON for
// operators; the model never consumes it at runtime.
type Schema struct {
	Fields      []string `json:"fields"`
	Description string   `json:"description"`
}

// Schemas returns the static catalog of the five collections and their join
// semantics. Every non-profile collection references profiles.clerkId.
func Schemas() map[string]Schema {
	return map[string]Schema{
		"profiles": {
			Fields:      []string{"clerkId", "userId", "email", "fullName", "phone", "address", "kycStatus", "isAdmin", "createdAt", "updatedAt"},
			Description: "User profile information - JOIN KEY: clerkId",
		},
		"accounts": {
			Fields:      []string{"userId", "accountNumber", "accountType", "balance", "currency", "status", "createdAt", "updatedAt"},
			Description: "Bank accounts - userId references profiles.clerkId",
		},
		"transactions": {
			Fields:      []string{"userId", "accountId", "amount", "type", "status", "description", "referenceId", "createdAt"},
			Description: "Transactions - userId references profiles.clerkId (NO NAME FIELD!)",
		},
		"loans": {
			Fields:      []string{"userId", "loanType", "amount", "interestRate", "tenureMonths", "status", "totalPayable", "amountPaid", "emiAmount", "createdAt"},
			Description: "Loans - userId references profiles.clerkId",
		},
		"emipayments": {
			Fields:      []string{"loanId", "userId", "emiNumber", "amount", "status", "dueDate", "paidDate", "createdAt"},
			Description: "EMI payments - userId references profiles.clerkId",
		},
	}
}
