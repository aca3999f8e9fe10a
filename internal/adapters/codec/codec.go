// Package codec reads and writes employee records in the line-oriented text format:
//
//	<employee id>: <name>
//
//	<job id> <T|P> <YYYY-MM-DD> '''<flattened note>''' <metric> <metric> ...
//
// Entry lines run job by job in formal-code order; within a job the technical
// history precedes the personal one, each in ascending date order.
package codec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/okian/ewi/internal/domain/employee"
	"github.com/okian/ewi/internal/domain/model"
	"github.com/okian/ewi/internal/domain/record"
)

const (
	idDelim   = ':'
	noteDelim = "'''"
)

// Encode writes rec to w. Nothing is written when rec fails Validate.
func Encode(w io.Writer, rec *employee.Record) error {
	if err := Validate(rec); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	who := rec.Who()
	bw.WriteString(who.ID.Formal())
	bw.WriteByte(idDelim)
	bw.WriteByte(' ')
	bw.WriteString(who.Name)
	bw.WriteString("\n\n")

	var line []byte
	for _, job := range rec.Jobs() {
		wi, err := rec.Get(job)
		if err != nil {
			return err
		}
		for _, c := range employee.Categories {
			for _, e := range wi.Record(c).Entries() {
				line = AppendEntry(line[:0], job, c, e)
				line = append(line, '\n')
				if _, err := bw.Write(line); err != nil {
					return err
				}
			}
		}
	}
	return bw.Flush()
}

// AppendEntry appends the serialized form of e, without a trailing newline, to dst.
func AppendEntry(dst []byte, job model.JobID, c employee.Category, e record.Entry) []byte {
	dst = append(dst, job.Formal()...)
	dst = append(dst, ' ', c.Token(), ' ')
	dst = append(dst, e.Date().String()...)
	dst = append(dst, ' ')
	dst = append(dst, noteDelim...)
	dst = append(dst, Flatten(e.Note())...)
	dst = append(dst, noteDelim...)
	for _, v := range e.Metrics() {
		dst = append(dst, ' ')
		dst = strconv.AppendFloat(dst, v, 'g', -1, 64)
	}
	return dst
}

// Decode reads an employee record from r. Entries for each (job, category)
// pair must appear in ascending date order; nothing is reordered. Reading stops
// at the first blank line after the entries begin or at end of input.
func Decode(r io.Reader) (*employee.Record, error) {
	lr := lineReader{r: bufio.NewReader(r)}

	header, ok, err := lr.next()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, lineErr(1, fmt.Errorf("%w: empty input", ErrMalformedHeader))
	}
	emp, err := parseHeader(header)
	if err != nil {
		return nil, lineErr(lr.n, err)
	}
	out := employee.New(emp)

	started := false
	for {
		line, ok, err := lr.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if strings.TrimSpace(line) == "" {
			if started {
				break
			}
			continue
		}
		started = true

		job, c, e, err := ParseEntry(line)
		if err != nil {
			return nil, lineErr(lr.n, err)
		}
		if err := out.AddEntry(job, c, e); err != nil {
			return nil, lineErr(lr.n, err)
		}
	}
	return out, nil
}

// ParseEntry parses one entry line.
func ParseEntry(line string) (model.JobID, employee.Category, record.Entry, error) {
	var (
		job model.JobID
		c   employee.Category
	)
	jobTok, rest := nextToken(line)
	catTok, rest := nextToken(rest)
	dateTok, rest := nextToken(rest)
	if jobTok == "" || catTok == "" || dateTok == "" {
		return job, c, record.Entry{}, fmt.Errorf("%w: expected job, category and date", ErrMalformedLine)
	}
	job = model.NewJobID(jobTok)

	switch catTok {
	case string(employee.Technical.Token()):
		c = employee.Technical
	case string(employee.Personal.Token()):
		c = employee.Personal
	default:
		return job, c, record.Entry{}, fmt.Errorf("%w %q", ErrUnknownCategory, catTok)
	}

	date, err := model.ParseDate(dateTok)
	if err != nil {
		return job, c, record.Entry{}, fmt.Errorf("%w %q", ErrInvalidDate, dateTok)
	}

	note, tail, err := splitNote(rest)
	if err != nil {
		return job, c, record.Entry{}, err
	}

	fields := strings.Fields(tail)
	metrics := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return job, c, record.Entry{}, fmt.Errorf("%w %q", ErrInvalidMetric, f)
		}
		metrics[i] = v
	}
	return job, c, record.NewEntry(date, note, metrics), nil
}

// splitNote strips the note delimiters from the start of s and returns the
// expanded note plus whatever follows the closing delimiter. Metric tokens never
// contain apostrophes, so the closing delimiter is the last one on the line;
// this also keeps notes that end in apostrophes intact.
func splitNote(s string) (string, string, error) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if !strings.HasPrefix(s, noteDelim) {
		return "", "", fmt.Errorf("%w: note must start with %s", ErrMalformedLine, noteDelim)
	}
	s = s[len(noteDelim):]
	end := strings.LastIndex(s, noteDelim)
	if end < 0 {
		return "", "", ErrUnterminatedNote
	}
	tail := s[end+len(noteDelim):]
	if tail != "" && !unicode.IsSpace(rune(tail[0])) {
		return "", "", fmt.Errorf("%w: expected whitespace after note", ErrMalformedLine)
	}
	return Expand(s[:end]), tail, nil
}

func parseHeader(line string) (model.Employee, error) {
	id, name, found := strings.Cut(line, string(idDelim))
	id = strings.TrimSpace(id)
	if !found {
		return model.Employee{}, fmt.Errorf("%w: missing %q separator", ErrMalformedHeader, idDelim)
	}
	if id == "" {
		return model.Employee{}, fmt.Errorf("%w: empty employee id", ErrMalformedHeader)
	}
	return model.NewEmployee(id, strings.TrimLeftFunc(name, unicode.IsSpace)), nil
}

func nextToken(s string) (string, string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if i := strings.IndexFunc(s, unicode.IsSpace); i >= 0 {
		return s[:i], s[i:]
	}
	return s, ""
}

// lineReader yields lines without their terminator and counts them.
type lineReader struct {
	r *bufio.Reader
	n int
}

func (lr *lineReader) next() (string, bool, error) {
	line, err := lr.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, err
	}
	if line == "" && err != nil {
		return "", false, nil
	}
	lr.n++
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, true, nil
}

// ExportFile writes rec to path, truncating any existing file. A failure part
// way through can leave a partial file; use repository.FileStore for atomic saves.
func ExportFile(path string, rec *employee.Record) (err error) {
	if err := Validate(rec); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("export %s: %w", path, cerr)
		}
	}()
	if err := Encode(f, rec); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}

// ImportFile reads an employee record from path.
func ImportFile(path string) (*employee.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	defer f.Close()
	rec, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	return rec, nil
}
