package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/okian/ewi/internal/adapters/codec"
	app "github.com/okian/ewi/internal/app"
	"github.com/okian/ewi/internal/config"
	"github.com/okian/ewi/internal/domain/employee"
	"github.com/okian/ewi/internal/domain/model"
	"github.com/okian/ewi/internal/domain/record"
	"github.com/okian/ewi/internal/domain/survey"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const usage = `usage: ewi <command> [flags]

commands:
  serve    run the HTTP API
  create   create an employee          -id -name
  submit   add an entry                -id -job -category [-date -note] metric...
  survey   answer a survey on stdin    -id -job -category [-date]
  show     print jobs or entries       -id [-job -category -from -to]
  index    print the workload index    -id -job -category [-from -to]
  jobs     list job definitions
  export   write a history file        -id -out
  import   read a history file         -in [-force]
`

type command func(ctx context.Context, env *cliEnv, args []string) error

type cliEnv struct {
	cfg    *config.Config
	svc    *app.Service
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

var commands = map[string]command{
	"serve":  cmdServe,
	"create": cmdCreate,
	"submit": cmdSubmit,
	"survey": cmdSurvey,
	"show":   cmdShow,
	"index":  cmdIndex,
	"jobs":   cmdJobs,
	"export": cmdExport,
	"import": cmdImport,
}

var errUsage = errors.New("usage")

// run dispatches a subcommand and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "help" {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return exitUsage
	}

	cfg, svc, err := setup(ctx, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "ewi:", err)
		return exitError
	}
	defer svc.Stop()

	env := &cliEnv{cfg: cfg, svc: svc, stdin: stdin, stdout: stdout, stderr: stderr}
	if err := cmd(ctx, env, args[1:]); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			return exitUsage
		}
		fmt.Fprintln(stderr, "ewi:", err)
		return exitError
	}
	return exitOK
}

// target collects the flags shared by entry commands.
type target struct {
	id, job, category string
	from, to          string
}

func newFlagSet(name string, env *cliEnv, t *target, withJob, withRange bool) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(env.stderr)
	fs.StringVar(&t.id, "id", "", "employee ID")
	if withJob {
		fs.StringVar(&t.job, "job", "", "job code")
		fs.StringVar(&t.category, "category", "technical", "technical|personal (or T|P)")
	}
	if withRange {
		fs.StringVar(&t.from, "from", "", "first day, YYYY-MM-DD")
		fs.StringVar(&t.to, "to", "", "last day, YYYY-MM-DD")
	}
	return fs
}

// resolve parses the shared flags. Commands that touch one history pass needJob.
func (t target) resolve(needJob bool) (model.EmployeeID, model.JobID, employee.Category, error) {
	if t.id == "" {
		return model.EmployeeID{}, model.JobID{}, 0, fmt.Errorf("%w: -id is required", errUsage)
	}
	if needJob && strings.TrimSpace(t.job) == "" {
		return model.EmployeeID{}, model.JobID{}, 0, fmt.Errorf("%w: -job is required", errUsage)
	}
	c, err := employee.ParseCategory(t.category)
	if err != nil {
		return model.EmployeeID{}, model.JobID{}, 0, err
	}
	return model.NewEmployeeID(t.id), model.NewJobID(t.job), c, nil
}

func (t target) dateRange() (record.DateRange, error) {
	var rng record.DateRange
	if t.from != "" {
		d, err := model.ParseDate(t.from)
		if err != nil {
			return rng, err
		}
		rng.Min = &d
	}
	if t.to != "" {
		d, err := model.ParseDate(t.to)
		if err != nil {
			return rng, err
		}
		rng.Max = &d
	}
	return rng, nil
}

func parseDateFlag(s string) (model.Date, error) {
	if s == "" {
		return model.Today(), nil
	}
	return model.ParseDate(s)
}

func cmdServe(ctx context.Context, env *cliEnv, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(env.stderr)
	addr := fs.String("addr", env.cfg.Addr, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	env.cfg.Addr = *addr
	return serve(ctx, env.cfg, env.svc)
}

func cmdCreate(ctx context.Context, env *cliEnv, args []string) error {
	var t target
	fs := newFlagSet("create", env, &t, false, false)
	name := fs.String("name", "", "employee name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if t.id == "" || *name == "" {
		return fmt.Errorf("%w: -id and -name are required", errUsage)
	}
	rec, err := env.svc.CreateEmployee(ctx, model.NewEmployee(t.id, *name))
	if err != nil {
		return err
	}
	fmt.Fprintf(env.stdout, "created %s: %s\n", rec.Who().ID, rec.Who().Name)
	return nil
}

func cmdSubmit(ctx context.Context, env *cliEnv, args []string) error {
	var t target
	fs := newFlagSet("submit", env, &t, true, false)
	date := fs.String("date", "", "entry day, YYYY-MM-DD (default today)")
	note := fs.String("note", "", "free-text note")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, job, c, err := t.resolve(true)
	if err != nil {
		return err
	}
	d, err := parseDateFlag(*date)
	if err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: at least one metric is required", errUsage)
	}
	values := make([]float64, fs.NArg())
	for i, a := range fs.Args() {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return fmt.Errorf("metric %d: %w", i+1, err)
		}
		values[i] = v
	}
	e := record.NewEntry(d, *note, values)
	if err := env.svc.AddEntry(ctx, id, job, c, e); err != nil {
		return err
	}
	fmt.Fprintf(env.stdout, "added %s %s %s\n", job, c, d)
	return nil
}

// cmdSurvey prompts for each question on stdout and reads answers from stdin.
// Notes run until an empty line or end of input.
func cmdSurvey(ctx context.Context, env *cliEnv, args []string) error {
	var t target
	fs := newFlagSet("survey", env, &t, true, false)
	date := fs.String("date", "", "entry day, YYYY-MM-DD (default today)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, job, c, err := t.resolve(true)
	if err != nil {
		return err
	}
	d, err := parseDateFlag(*date)
	if err != nil {
		return err
	}

	questions := survey.PersonalQuestions()
	scale := fmt.Sprintf(" [%d-%d]", survey.PersonalMin, survey.PersonalMax)
	if c == employee.Technical {
		p, err := env.svc.Profile(job)
		if err != nil {
			return err
		}
		questions, scale = p.Questions, ""
		fmt.Fprintf(env.stdout, "%s: %s\n", p.Job, p.Title)
	}

	in := bufio.NewScanner(env.stdin)
	responses := []string{d.String()}
	for i, q := range questions {
		fmt.Fprintf(env.stdout, "%d. %s%s: ", i+1, q, scale)
		if !in.Scan() {
			return fmt.Errorf("survey ended before question %d: %w", i+1, io.ErrUnexpectedEOF)
		}
		responses = append(responses, strings.TrimSpace(in.Text()))
	}
	fmt.Fprint(env.stdout, "Notes (end with an empty line):\n")
	var notes []string
	for in.Scan() && in.Text() != "" {
		notes = append(notes, in.Text())
	}
	if err := in.Err(); err != nil {
		return err
	}
	responses = append(responses, strings.Join(notes, "\n"))

	e, err := env.svc.SubmitSurvey(ctx, id, job, c, responses)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.stdout, "added %s %s %s\n", job, c, e.Date())
	return nil
}

func cmdShow(ctx context.Context, env *cliEnv, args []string) error {
	var t target
	fs := newFlagSet("show", env, &t, true, true)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, job, c, err := t.resolve(false)
	if err != nil {
		return err
	}
	if job.IsZero() {
		rec, err := env.svc.Employee(ctx, id)
		if err != nil {
			return err
		}
		jobs, err := env.svc.Jobs(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(env.stdout, "%s: %s\n", rec.Who().ID, rec.Who().Name)
		for _, j := range jobs {
			h, _ := rec.History(j, employee.Technical)
			p, _ := rec.History(j, employee.Personal)
			fmt.Fprintf(env.stdout, "  %s %s (%d technical, %d personal)\n", j, j.Label(), h.Len(), p.Len())
		}
		return nil
	}

	rng, err := t.dateRange()
	if err != nil {
		return err
	}
	entries, err := env.svc.Entries(ctx, id, job, c, rng)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(env.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tMETRICS\tNOTE")
	for _, e := range entries {
		metrics := make([]string, e.Dim())
		for i, v := range e.Metrics() {
			metrics[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Date(), strings.Join(metrics, " "), codec.Flatten(e.Note()))
	}
	return tw.Flush()
}

func cmdIndex(ctx context.Context, env *cliEnv, args []string) error {
	var t target
	fs := newFlagSet("index", env, &t, true, true)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, job, c, err := t.resolve(true)
	if err != nil {
		return err
	}
	rng, err := t.dateRange()
	if err != nil {
		return err
	}
	res, err := env.svc.Index(ctx, id, job, c, rng)
	if err != nil {
		return err
	}
	questions := survey.PersonalQuestions()
	if c == employee.Technical {
		if p, err := env.svc.Profile(job); err == nil {
			questions = p.Questions
		}
	}
	fmt.Fprintf(env.stdout, "%s %s %s %s\n", id, job, c, rng)
	tw := tabwriter.NewWriter(env.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tMEAN\tINDEX\tQUESTION")
	for i := range res.Index {
		q := ""
		if i < len(questions) {
			q = questions[i]
		}
		fmt.Fprintf(tw, "%d\t%.3g\t%.3g\t%s\n", i+1, res.Means[i], res.Index[i], q)
	}
	return tw.Flush()
}

func cmdJobs(_ context.Context, env *cliEnv, _ []string) error {
	for _, p := range env.svc.Profiles() {
		fmt.Fprintf(env.stdout, "%s: %s (%d questions)\n", p.Job, p.Title, p.MetricCount())
	}
	return nil
}

func cmdExport(ctx context.Context, env *cliEnv, args []string) error {
	var t target
	fs := newFlagSet("export", env, &t, false, false)
	out := fs.String("out", "", "destination file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if t.id == "" || *out == "" {
		return fmt.Errorf("%w: -id and -out are required", errUsage)
	}
	rec, err := env.svc.Employee(ctx, model.NewEmployeeID(t.id))
	if err != nil {
		return err
	}
	return codec.ExportFile(*out, rec)
}

func cmdImport(ctx context.Context, env *cliEnv, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(env.stderr)
	in := fs.String("in", "", "history file")
	force := fs.Bool("force", false, "replace an existing history")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("%w: -in is required", errUsage)
	}
	rec, err := codec.ImportFile(*in)
	if err != nil {
		return err
	}
	if err := env.svc.Import(ctx, rec, *force); err != nil {
		return err
	}
	fmt.Fprintf(env.stdout, "imported %s: %s (%d jobs)\n", rec.Who().ID, rec.Who().Name, rec.Len())
	return nil
}
