// ==============================================================================
// SCENARIO SEED - cmd/seed/main.go
// ==============================================================================
package main

import (
	"encoding/json"
	"log"
	"os"

	"rtgssim/pkg/config"
)

func main() {
	path := os.Getenv("SCENARIO_CONFIG_PATH")
	if path == "" {
		path = "./scenario.json"
	}

	log.Println("🌱 Seeding starter scenario...")

	cfg := config.SimulationConfig{
		TicksPerDay:       24,
		NumDays:           2,
		RngSeed:           42,
		DeferredCrediting: false,
		Agents: []config.AgentConfig{
			{
				ID:             "bank-a",
				OpeningBalance: 1_000_000_00,
				CreditLimit:    200_000_00,
				Policy:         config.PolicyConfig{Kind: "fifo"},
				ArrivalConfig: &config.ArrivalConfig{
					RatePerTick:        2,
					AmountDistribution: "log_normal",
					AmountParam1:       10,
					AmountParam2:       1,
					CounterpartyWeights: map[string]float64{
						"bank-b": 1, "bank-c": 1, "bank-d": 1,
					},
					DeadlineMin: 4,
					DeadlineMax: 12,
					Priority:    intPtr(5),
					Divisible:   true,
				},
			},
			{
				ID:             "bank-b",
				OpeningBalance: 800_000_00,
				CreditLimit:    150_000_00,
				Policy:         config.PolicyConfig{Kind: "deadline", UrgencyThreshold: 2},
				ArrivalConfig: &config.ArrivalConfig{
					RatePerTick:        2,
					AmountDistribution: "log_normal",
					AmountParam1:       10,
					AmountParam2:       1,
					CounterpartyWeights: map[string]float64{
						"bank-a": 1, "bank-c": 1, "bank-d": 1,
					},
					DeadlineMin: 4,
					DeadlineMax: 12,
					Priority:    intPtr(5),
					Divisible:   true,
				},
			},
			{
				ID:             "bank-c",
				OpeningBalance: 600_000_00,
				CreditLimit:    100_000_00,
				Policy:         config.PolicyConfig{Kind: "liquidity_splitting", MaxSplits: 4, MinSplitAmount: 1000_00},
				ArrivalConfig: &config.ArrivalConfig{
					RatePerTick:        1,
					AmountDistribution: "log_normal",
					AmountParam1:       11,
					AmountParam2:       1,
					CounterpartyWeights: map[string]float64{
						"bank-a": 1, "bank-b": 1, "bank-d": 1,
					},
					DeadlineMin: 4,
					DeadlineMax: 12,
					Priority:    intPtr(5),
					Divisible:   true,
				},
			},
			{
				ID:             "bank-d",
				OpeningBalance: 400_000_00,
				CreditLimit:    80_000_00,
				Policy:         config.PolicyConfig{Kind: "fifo"},
				ArrivalConfig: &config.ArrivalConfig{
					RatePerTick:        1,
					AmountDistribution: "log_normal",
					AmountParam1:       10,
					AmountParam2:       1,
					CounterpartyWeights: map[string]float64{
						"bank-a": 1, "bank-b": 1, "bank-c": 1,
					},
					DeadlineMin: 4,
					DeadlineMax: 12,
					Priority:    intPtr(5),
					Divisible:   true,
				},
			},
		},
		CostRates: config.CostRatesConfig{
			OverdraftBpsPerTick:      5,
			DelayCostPerTickPerCent:  1,
			CollateralCostPerTickBps: 2,
			EodPenaltyPerTransaction: 500_00,
			DeadlinePenalty:          1000_00,
			SplitFrictionCost:        50_00,
		},
		LSM: config.LSMConfig{
			BilateralEnabled:      true,
			CycleDetectionEnabled: true,
			MaxCycleLength:        4,
		},
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal scenario: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Fatalf("Failed to write scenario file: %v", err)
	}
	log.Printf("✅ Wrote starter scenario to %s\n", path)
}

func intPtr(v int) *int { return &v }
