// Package survey loads job definitions and turns survey answers into entries.
package survey

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/okian/ewi/internal/domain/model"
)

const (
	jobSep      = ':'
	averageSep  = '|'
	profileYAML = ".yaml"
	profileYML  = ".yml"
)

// Profile is a parsed job definition: the job, its technical questions and the
// expected average answer for each one.
type Profile struct {
	Job       model.JobID
	Title     string
	Questions []string
	Averages  []float64
}

// MetricCount returns the number of numeric questions.
func (p Profile) MetricCount() int { return len(p.Questions) }

// LoadProfile reads a job definition from path. Files ending in .yaml or .yml
// are decoded as YAML; anything else uses the text format read by ParseProfile.
func LoadProfile(path string) (Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return Profile{}, fmt.Errorf("load profile %s: %w", path, err)
	}
	defer f.Close()

	var p Profile
	switch strings.ToLower(filepath.Ext(path)) {
	case profileYAML, profileYML:
		p, err = ParseProfileYAML(f)
	default:
		p, err = ParseProfile(f)
	}
	if err != nil {
		return Profile{}, fmt.Errorf("load profile %s: %w", path, err)
	}
	return p, nil
}

// ParseProfile reads the text job-definition format:
//
//	<job code>: <title>
//
//	<question> | <average>
//	...
//
// Questions run until a blank line or end of input.
func ParseProfile(r io.Reader) (Profile, error) {
	sc := bufio.NewScanner(r)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return Profile{}, err
		}
		return Profile{}, fmt.Errorf("%w: empty input", ErrPrematureEnd)
	}
	header := sc.Text()
	if strings.TrimSpace(header) == "" {
		return Profile{}, fmt.Errorf("%w: file must begin with the job code and title", ErrMalformedProfile)
	}
	code, title, found := strings.Cut(header, string(jobSep))
	code = strings.TrimSpace(code)
	if !found || code == "" {
		return Profile{}, fmt.Errorf("%w: job code must be followed by %q", ErrMalformedProfile, jobSep)
	}
	title = strings.TrimSpace(title)
	p := Profile{Job: model.NewJobID(code, title), Title: title}

	// skip blank lines before the questions
	line := ""
	for {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return Profile{}, err
			}
			return Profile{}, fmt.Errorf("%w: no questions", ErrPrematureEnd)
		}
		line = sc.Text()
		if strings.TrimSpace(line) != "" {
			break
		}
	}

	for strings.TrimSpace(line) != "" {
		q, avg, err := parseQuestion(line)
		if err != nil {
			return Profile{}, err
		}
		p.Questions = append(p.Questions, q)
		p.Averages = append(p.Averages, avg)

		if !sc.Scan() {
			break
		}
		line = sc.Text()
	}
	if err := sc.Err(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func parseQuestion(line string) (string, float64, error) {
	i := strings.LastIndexByte(line, averageSep)
	if i < 0 {
		return "", 0, fmt.Errorf("%w: %q", ErrMissingAverage, line)
	}
	q := strings.TrimSpace(line[:i])
	raw := strings.TrimSpace(line[i+1:])
	if raw == "" {
		return "", 0, fmt.Errorf("%w: %q", ErrMissingAverage, line)
	}
	avg, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidAverage, raw)
	}
	return q, avg, nil
}

type yamlProfile struct {
	ID        string `yaml:"id"`
	Title     string `yaml:"title"`
	Questions []struct {
		Text    string  `yaml:"text"`
		Average float64 `yaml:"average"`
	} `yaml:"questions"`
}

// ParseProfileYAML reads a job definition written as
//
//	id: "0260"
//	title: Process Counselor
//	questions:
//	  - text: Cases handled
//	    average: 4
func ParseProfileYAML(r io.Reader) (Profile, error) {
	var y yamlProfile
	if err := yaml.NewDecoder(r).Decode(&y); err != nil {
		if err == io.EOF {
			return Profile{}, fmt.Errorf("%w: empty input", ErrPrematureEnd)
		}
		return Profile{}, fmt.Errorf("%w: %v", ErrMalformedProfile, err)
	}
	if strings.TrimSpace(y.ID) == "" {
		return Profile{}, fmt.Errorf("%w: missing id", ErrMalformedProfile)
	}
	if len(y.Questions) == 0 {
		return Profile{}, fmt.Errorf("%w: no questions", ErrPrematureEnd)
	}
	p := Profile{Job: model.NewJobID(y.ID, y.Title), Title: y.Title}
	for _, q := range y.Questions {
		p.Questions = append(p.Questions, strings.TrimSpace(q.Text))
		p.Averages = append(p.Averages, q.Average)
	}
	return p, nil
}
