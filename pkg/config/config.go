// Package config loads the two layers of configuration a simulation run
// needs: a RuntimeConfig for the ambient infrastructure a process talks
// to (Postgres event sink, Redis snapshot cache, logging), read from the
// environment the way every cmd/ entrypoint in this module does; and a
// SimulationConfig, the full declarative description of one run (agents,
// cost rates, LSM behavior, scenario events), read from a JSON file.
package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// RuntimeConfig is the environment-sourced half of configuration: where
// to find Postgres and Redis, and what to call this process in logs.
type RuntimeConfig struct {
	ServiceName string

	DatabaseURL     string
	DBMaxOpenConns  int
	DBMaxIdleConns  int
	DBConnMaxIdle   time.Duration

	RedisURL      string
	RedisPassword string
	RedisDB       int

	ScenarioConfigPath string
}

// LoadRuntime reads RuntimeConfig from the environment, falling back to
// development-friendly defaults for anything unset. It loads a .env file
// first if one is present in the working directory.
func LoadRuntime() *RuntimeConfig {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment variables")
	}
	return &RuntimeConfig{
		ServiceName: getEnv("SERVICE_NAME", "rtgssim"),

		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DBMaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxIdle:  getDurationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute),

		RedisURL:      normalizeRedisURL(getEnv("REDIS_URL", "localhost:6379")),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		ScenarioConfigPath: getEnv("SCENARIO_CONFIG_PATH", "./scenario.json"),
	}
}

// AgentConfig is one entry of a SimulationConfig's agents list.
type AgentConfig struct {
	ID                string        `json:"id" validate:"required"`
	OpeningBalance    int64         `json:"opening_balance"`
	CreditLimit       int64         `json:"credit_limit" validate:"min=0"`
	CollateralCostBps int64         `json:"collateral_cost_bps,omitempty"`
	Policy            PolicyConfig  `json:"policy"`
	ArrivalConfig     *ArrivalConfig `json:"arrival_config,omitempty"`
}

// PolicyConfig names which concrete policy.Evaluator an agent runs and
// carries its parameters. Kind selects the constructor; the remaining
// fields are only meaningful for the kind that uses them.
type PolicyConfig struct {
	Kind string `json:"kind" validate:"required,oneof=fifo deadline liquidity_splitting mock_splitting tree_inline tree_file liquidity_aware"`

	// deadline, liquidity_aware
	UrgencyThreshold int64 `json:"urgency_threshold,omitempty"`

	// liquidity_aware
	TargetBuffer int64 `json:"target_buffer,omitempty"`

	// liquidity_splitting
	MaxSplits      int   `json:"max_splits,omitempty"`
	MinSplitAmount int64 `json:"min_split_amount,omitempty"`

	// mock_splitting
	NumSplits int `json:"num_splits,omitempty"`

	// tree_file
	TreePath string `json:"tree_path,omitempty"`
	// tree_inline: raw decision-tree JSON, parsed the same way as a
	// tree_file's contents.
	TreeJSON string `json:"tree_json,omitempty"`
	// Overrides rewrites named leaf parameters in the tree at load time,
	// shared by tree_file and tree_inline.
	TreeOverrides map[string]float64 `json:"tree_overrides,omitempty"`
}

// ArrivalConfig mirrors arrivals.Config for JSON decoding.
type ArrivalConfig struct {
	RatePerTick         float64            `json:"rate_per_tick"`
	AmountDistribution  string             `json:"amount_distribution" validate:"omitempty,oneof=uniform normal log_normal exponential"`
	AmountParam1        float64            `json:"amount_param_1"`
	AmountParam2        float64            `json:"amount_param_2"`
	CounterpartyWeights map[string]float64 `json:"counterparty_weights"`
	DeadlineMin         int64              `json:"deadline_min"`
	DeadlineMax         int64              `json:"deadline_max"`
	// Priority is a pointer so an omitted field (nil) can be told apart
	// from an explicitly configured priority of 0, which is a legitimate
	// value in [0,10] and must not be silently remapped to the default.
	Priority  *int `json:"priority,omitempty"`
	Divisible bool `json:"divisible"`
}

// ScenarioEvent mirrors arrivals.ScheduledEvent for JSON decoding.
type ScenarioEvent struct {
	FromAgent string `json:"from_agent" validate:"required"`
	ToAgent   string `json:"to_agent" validate:"required"`
	Amount    int64  `json:"amount" validate:"required,gt=0"`
	Priority  int    `json:"priority"`
	Deadline  int64  `json:"deadline"`
	Tick      int64  `json:"tick"`
	Divisible bool   `json:"divisible"`
}

// CostRatesConfig mirrors costs.Rates for JSON decoding.
type CostRatesConfig struct {
	OverdraftBpsPerTick      int64 `json:"overdraft_bps_per_tick"`
	DelayCostPerTickPerCent  int64 `json:"delay_cost_per_tick_per_cent"`
	CollateralCostPerTickBps int64 `json:"collateral_cost_per_tick_bps"`
	EodPenaltyPerTransaction int64 `json:"eod_penalty_per_transaction"`
	DeadlinePenalty          int64 `json:"deadline_penalty"`
	SplitFrictionCost        int64 `json:"split_friction_cost"`
}

// LSMConfig mirrors lsm.Config for JSON decoding.
type LSMConfig struct {
	BilateralEnabled       bool `json:"bilateral_enabled"`
	CycleDetectionEnabled  bool `json:"cycle_detection_enabled"`
	MaxCycleLength         int  `json:"max_cycle_length" validate:"omitempty,oneof=3 4"`
	PriorityClassesEnabled bool `json:"priority_classes_enabled"`
}

// SimulationConfig is the full declarative input to a run, as read from
// a scenario JSON file.
type SimulationConfig struct {
	TicksPerDay       int64           `json:"ticks_per_day" validate:"required,min=1"`
	NumDays           int64           `json:"num_days" validate:"required,min=1"`
	RngSeed           uint64          `json:"rng_seed" validate:"required,ne=0"`
	DeferredCrediting bool            `json:"deferred_crediting"`
	Agents            []AgentConfig   `json:"agents" validate:"required,min=1,dive"`
	CostRates         CostRatesConfig `json:"cost_rates"`
	LSM               LSMConfig       `json:"lsm_config"`
	ScenarioEvents    []ScenarioEvent `json:"scenario_events" validate:"dive"`
}

// LoadSimulationConfig reads and parses a scenario JSON file. It does not
// validate field constraints; call a Validator against the result for
// that.
func LoadSimulationConfig(path string) (*SimulationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg SimulationConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func normalizeRedisURL(url string) string {
	if strings.HasPrefix(url, "redis+tls://") {
		return url[len("redis+tls://"):]
	}
	if strings.HasPrefix(url, "redis://") {
		return url[len("redis://"):]
	}
	return url
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
