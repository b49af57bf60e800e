package ports

// View renders client state. It replaces the page's DOM elements.
type View interface {
	ShowLogin()
	ShowDashboard(address string)
	ShowBalances(balbi, usdc string)
	ShowClaimControl(enabled bool, label string)
	ShowTimer(text string)
	// ShowClaimResult shows a claim outcome. An empty txHash hides the hash line.
	ShowClaimResult(message, txHash string)
	HideClaimResult()
	Alert(message string)
}
