package token

// seed is the hand-authored initial state. Never hand it out directly.
var seed = []Record{
	{
		ID: "1", Name: "NanoBanana", Symbol: "NB",
		Price: 0.85, Change24h: 0.05, MarketCap: 120_000_000, Volume24h: 35_000_000,
		Category:  CategoryNew,
		History:   []float64{0.8, 0.82, 0.85, 0.83, 0.85, 0.87, 0.85},
		Liquidity: 5_000_000, Holders: 12450, Transactions24h: 8920,
	},
	{
		ID: "2", Name: "QuantumLeap", Symbol: "QL",
		Price: 1.52, Change24h: -0.02, MarketCap: 450_000_000, Volume24h: 80_000_000,
		Category:  CategoryLateStage,
		History:   []float64{1.55, 1.53, 1.52, 1.54, 1.52, 1.51, 1.52},
		Liquidity: 15_000_000, Holders: 28340, Transactions24h: 15670,
	},
	{
		ID: "3", Name: "AxiomCore", Symbol: "AXC",
		Price: 12.1, Change24h: 0.15, MarketCap: 900_000_000, Volume24h: 120_000_000,
		Category:  CategoryNew,
		History:   []float64{12.0, 12.05, 12.1, 12.08, 12.1, 12.12, 12.1},
		Liquidity: 25_000_000, Holders: 45230, Transactions24h: 22450,
	},
	{
		ID: "4", Name: "DigitalFlow", Symbol: "DFL",
		Price: 0.012, Change24h: -0.001, MarketCap: 50_000_000, Volume24h: 15_000_000,
		Category:  CategoryGraduated,
		History:   []float64{0.013, 0.0125, 0.012, 0.0122, 0.012, 0.0118, 0.012},
		Liquidity: 2_000_000, Holders: 8920, Transactions24h: 5430,
	},
	{
		ID: "5", Name: "HyperChain", Symbol: "HCH",
		Price: 4.7, Change24h: 0.35, MarketCap: 300_000_000, Volume24h: 65_000_000,
		Category:  CategoryNew,
		History:   []float64{4.5, 4.6, 4.7, 4.65, 4.7, 4.72, 4.7},
		Liquidity: 12_000_000, Holders: 19870, Transactions24h: 11290,
	},
	{
		ID: "6", Name: "MetaVerse", Symbol: "MV",
		Price: 2.34, Change24h: 0.08, MarketCap: 250_000_000, Volume24h: 45_000_000,
		Category:  CategoryLateStage,
		History:   []float64{2.3, 2.32, 2.34, 2.33, 2.34, 2.35, 2.34},
		Liquidity: 8_000_000, Holders: 16540, Transactions24h: 9340,
	},
	{
		ID: "7", Name: "CryptoWave", Symbol: "CW",
		Price: 0.56, Change24h: -0.03, MarketCap: 80_000_000, Volume24h: 22_000_000,
		Category:  CategoryGraduated,
		History:   []float64{0.58, 0.57, 0.56, 0.57, 0.56, 0.55, 0.56},
		Liquidity: 3_500_000, Holders: 11230, Transactions24h: 6780,
	},
	{
		ID: "8", Name: "BlockForce", Symbol: "BF",
		Price: 8.92, Change24h: 0.22, MarketCap: 520_000_000, Volume24h: 95_000_000,
		Category:  CategoryNew,
		History:   []float64{8.7, 8.8, 8.92, 8.88, 8.92, 8.95, 8.92},
		Liquidity: 18_000_000, Holders: 32450, Transactions24h: 18920,
	},
}

// Seed returns a fresh deep copy of the initial token set.
func Seed() []Record {
	return CloneAll(seed)
}
