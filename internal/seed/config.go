// Package seed fills a running ewi server with synthetic survey history and
// checks the reported index against locally computed means.
package seed

import (
	"time"

	"github.com/okian/ewi/internal/domain/model"
	"github.com/okian/ewi/pkg/logger"
)

// Config holds configuration for a seeding run.
type Config struct {
	BaseURL   string        // Base URL of the service
	Employees int           // Number of employees to create
	Weeks     int           // Weekly entries per employee and category
	Job       string        // Job code the entries are filed under
	Metrics   int           // Technical metric count of Job
	Start     model.Date    // Date of the first entry
	Prefix    string        // Employee ID prefix
	Seed      uint64        // Random seed for generated answers
	Workers   int           // Number of concurrent workers
	Timeout   time.Duration // HTTP request timeout
	Verbose   bool          // Log every failed request
	Logger    logger.Logger // Defaults to the global logger
}

func (c *Config) log() logger.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logger.Get()
}

// Submission is one entry posted for an employee.
type Submission struct {
	Category string    `json:"-"`
	Survey   bool      `json:"-"`
	Date     string    `json:"date"`
	Note     string    `json:"note"`
	Metrics  []float64 `json:"metrics"`
}

// Plan is the generated history of one employee.
type Plan struct {
	ID          string
	Name        string
	Submissions []Submission
}

// Stats holds run statistics.
type Stats struct {
	EmployeesCreated  int
	EntriesGenerated  int
	EntriesSubmitted  int
	EntriesSuccessful int
	EntriesFailed     int
	IndexesVerified   int
	IndexMismatches   int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
