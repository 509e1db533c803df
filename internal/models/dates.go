package models

// LongDateLayout renders dates like "October 16, 2026".
const LongDateLayout = "January 2, 2006"

// ReceiptDateLayout stamps transactions: "October 16, 2026 | 9:05 AM".
const ReceiptDateLayout = "January 2, 2006 | 3:04 PM"
