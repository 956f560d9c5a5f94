package models

// Category represents a transaction category.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryGroceries     Category = "Groceries"
	CategoryTransport     Category = "Transport"
	CategoryShopping      Category = "Shopping"
	CategoryBills         Category = "Bills & Utilities"
	CategoryEntertainment Category = "Entertainment"
	CategoryHealth        Category = "Health"
	CategoryEducation     Category = "Education"
	CategoryRent          Category = "Rent"
	CategoryTravel        Category = "Travel"
	CategoryEMI           Category = "EMI"
	CategoryInvestment    Category = "Investment"

	CategorySalary    Category = "Salary"
	CategoryFreelance Category = "Freelance"
	CategoryInterest  Category = "Interest"
	CategoryDividend  Category = "Dividend"
	CategoryRefund    Category = "Refund"
	CategoryCashback  Category = "Cashback"

	CategoryOther Category = "Other"
)

var expenseCategories = []Category{
	CategoryFood,
	CategoryGroceries,
	CategoryTransport,
	CategoryShopping,
	CategoryBills,
	CategoryEntertainment,
	CategoryHealth,
	CategoryEducation,
	CategoryRent,
	CategoryTravel,
	CategoryEMI,
	CategoryInvestment,
	CategoryOther,
}

var incomeCategories = []Category{
	CategorySalary,
	CategoryFreelance,
	CategoryInterest,
	CategoryDividend,
	CategoryRefund,
	CategoryCashback,
	CategoryInvestment,
	CategoryOther,
}

// CategoriesFor returns the category vocabulary for a transaction type.
// "Other" is always the last entry.
func CategoriesFor(t TransactionType) []Category {
	var src []Category
	switch t {
	case TypeIncome:
		src = incomeCategories
	case TypeExpense:
		src = expenseCategories
	default:
		return nil
	}
	out := make([]Category, len(src))
	copy(out, src)
	return out
}

// IsKnown reports whether c belongs to the vocabulary of t.
func (c Category) IsKnown(t TransactionType) bool {
	for _, known := range CategoriesFor(t) {
		if c == known {
			return true
		}
	}
	return false
}
