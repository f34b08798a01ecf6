// Package journal persists saved position plans to a local SQLite file.
// Append only: plans are written once and listed newest first.
package journal

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/DimchoMorkova/crypto-calculator-dimcho/internal/common"
	"github.com/DimchoMorkova/crypto-calculator-dimcho/internal/field"
	"github.com/DimchoMorkova/crypto-calculator-dimcho/pkg/utils"
)

// Plan is one saved calculator setup, field values as rendered at save
// time.
type Plan struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	Side string `json:"side"`

	RiskUSD    string `json:"risk_usd"`
	EntryPrice string `json:"entry_price"`
	StopLoss   string `json:"stop_loss"`
	FeePercent string `json:"fee_percent"`
	Margin     string `json:"margin"`

	Size             string `json:"size"`
	Notional         string `json:"notional"`
	Leverage         string `json:"leverage"`
	LiquidationPrice string `json:"liquidation_price"`
	Verdict          string `json:"verdict"` // "safe", "unsafe" or ""

	Note string `json:"note"`
}

// NewPlan assembles a plan from a rendered snapshot. Side is "long",
// "short" or "" when undetermined.
func NewPlan(snap field.Snapshot, side, note string) *Plan {
	verdict := ""
	if snap.Safe.Valid {
		if snap.Safe.Bool {
			verdict = "safe"
		} else {
			verdict = "unsafe"
		}
	}

	return &Plan{
		Side:             side,
		RiskUSD:          snap.RiskUSD,
		EntryPrice:       snap.EntryPrice,
		StopLoss:         snap.StopLoss,
		FeePercent:       snap.FeePercent,
		Margin:           snap.Margin,
		Size:             snap.Size,
		Notional:         snap.Notional,
		Leverage:         snap.Leverage,
		LiquidationPrice: snap.LiquidationPrice,
		Verdict:          verdict,
		Note:             note,
	}
}

// Journal wraps the plan database.
type Journal struct {
	db *gorm.DB
}

// Open creates or opens the journal at path, creating parent directories
// as needed.
func Open(path string) (*Journal, error) {
	path = utils.ExpandHome(path)
	if dir := filepath.Dir(path); dir != "." {
		if err := utils.EnsureDir(dir); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Plan{}); err != nil {
		return nil, fmt.Errorf("migrate journal: %w", err)
	}

	return &Journal{db: db}, nil
}

// Save appends a plan, assigning an ID and timestamp when missing.
func (j *Journal) Save(p *Plan) error {
	if p.ID == "" {
		p.ID = common.GeneratePlanID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	if err := j.db.Create(p).Error; err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	return nil
}

// Recent returns up to limit plans, newest first.
func (j *Journal) Recent(limit int) ([]Plan, error) {
	if limit <= 0 {
		limit = 10
	}

	var plans []Plan
	err := j.db.Order("created_at desc").Limit(limit).Find(&plans).Error
	if err != nil {
		return nil, fmt.Errorf("load plans: %w", err)
	}
	return plans, nil
}

// Count returns the number of saved plans.
func (j *Journal) Count() (int64, error) {
	var n int64
	if err := j.db.Model(&Plan{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count plans: %w", err)
	}
	return n, nil
}

// Close releases the underlying database handle.
func (j *Journal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
