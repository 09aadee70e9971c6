package contracts

// ITokenManagement tracks token usage for a run and estimates token counts
// for batching and request sizing.
type ITokenManagement interface {
	EstimateTokens(text string) int
	UsedTokens(inputToken int, outputToken int)
	CalculateCost(providerName string, modelName string, inputToken int, outputToken int) float64
	DisplayTokens(providerName string, modelName string)
	GetCurrentTokenUsage() (total int, input int, output int)
	ClearToken()
}
