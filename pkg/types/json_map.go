package types

// JSONMap stores an arbitrary JSON object, such as a buyer's customization
// request or payout method details.
type JSONMap map[string]any
