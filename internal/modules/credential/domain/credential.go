package domain

// TokenKey is where the bearer token lives in the key-value store.
const TokenKey = "punchclock.token"
