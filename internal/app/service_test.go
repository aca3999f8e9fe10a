package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/ewi/internal/adapters/codec"
	"github.com/okian/ewi/internal/adapters/repository"
	service "github.com/okian/ewi/internal/app"
	"github.com/okian/ewi/internal/domain/employee"
	"github.com/okian/ewi/internal/domain/model"
	"github.com/okian/ewi/internal/domain/record"
	"github.com/okian/ewi/internal/domain/scoring"
	"github.com/okian/ewi/internal/domain/survey"
	. "github.com/smartystreets/goconvey/convey"
)

const counselorProfile = `0260: NETC EEO Informal Process Counselor

Informal complaints handled | 4
Hours spent in mediation | 12
Pending reports | 2
`

var (
	bugs = model.NewEmployee("55555", "Bugs Bunny")
	eeo  = model.NewJobID("0260")
)

func newService(t *testing.T) (*service.Service, string) {
	root := t.TempDir()
	jobs := filepath.Join(root, "jobs")
	if err := os.MkdirAll(jobs, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(jobs, "0260.txt"), []byte(counselorProfile), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(jobs, "README"), []byte("not a job"), 0o600); err != nil {
		t.Fatal(err)
	}
	store, err := repository.NewFileStore(filepath.Join(root, "usr"))
	if err != nil {
		t.Fatal(err)
	}
	return service.New(service.WithStore(store), service.WithJobDir(jobs)), root
}

func day(d int) model.Date { return model.NewDate(2024, 3, d) }

func TestService_Start(t *testing.T) {
	Convey("Given a service with a job directory", t, func() {
		svc, _ := newService(t)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then the job definitions are loaded", func() {
			p, err := svc.Profile(eeo)
			So(err, ShouldBeNil)
			So(p.MetricCount(), ShouldEqual, 3)
			So(svc.Profiles(), ShouldHaveLength, 1)
		})

		Convey("And starting twice is harmless", func() {
			So(svc.Start(ctx), ShouldBeNil)
		})
	})

	Convey("Given a service without a store", t, func() {
		svc := service.New()
		So(errors.Is(svc.Start(context.Background()), service.ErrNoStore), ShouldBeTrue)
		_, err := svc.Employee(context.Background(), bugs.ID)
		So(errors.Is(err, service.ErrNoStore), ShouldBeTrue)
	})

	Convey("Given a missing job directory", t, func() {
		store, err := repository.NewFileStore(t.TempDir())
		So(err, ShouldBeNil)
		svc := service.New(service.WithStore(store), service.WithJobDir(filepath.Join(t.TempDir(), "nope")))
		So(svc.Start(context.Background()), ShouldBeNil)
	})
}

func TestService_Employees(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, _ := newService(t)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When an employee is created", func() {
			_, err := svc.CreateEmployee(ctx, bugs)
			So(err, ShouldBeNil)

			Convey("Then it can be loaded and listed", func() {
				rec, err := svc.Employee(ctx, bugs.ID)
				So(err, ShouldBeNil)
				So(rec.Who().Name, ShouldEqual, "Bugs Bunny")
				So(rec.Len(), ShouldEqual, 0)

				ids, err := svc.Employees(ctx, "5*")
				So(err, ShouldBeNil)
				So(ids, ShouldHaveLength, 1)
			})

			Convey("Then creating it again fails", func() {
				_, err := svc.CreateEmployee(ctx, bugs)
				So(errors.Is(err, service.ErrEmployeeExists), ShouldBeTrue)
			})
		})

		Convey("When the employee is unknown", func() {
			_, err := svc.Employee(ctx, model.NewEmployeeID("404"))
			So(errors.Is(err, service.ErrEmployeeNotFound), ShouldBeTrue)

			err = svc.AddEntry(ctx, model.NewEmployeeID("404"), eeo, employee.Personal,
				record.NewEntry(day(1), "", []float64{3, 3, 3, 3, 3}))
			So(errors.Is(err, service.ErrEmployeeNotFound), ShouldBeTrue)
		})
	})
}

func TestService_Entries(t *testing.T) {
	Convey("Given an employee with a counselor job", t, func() {
		svc, _ := newService(t)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		_, err := svc.CreateEmployee(ctx, bugs)
		So(err, ShouldBeNil)

		So(svc.AddEntry(ctx, bugs.ID, eeo, employee.Technical, record.NewEntry(day(1), "", []float64{4, 12, 2})), ShouldBeNil)
		So(svc.AddEntry(ctx, bugs.ID, eeo, employee.Technical, record.NewEntry(day(8), "long week", []float64{8, 24, 4})), ShouldBeNil)

		Convey("Then entries persist across loads", func() {
			got, err := svc.Entries(ctx, bugs.ID, eeo, employee.Technical, record.All())
			So(err, ShouldBeNil)
			So(got, ShouldHaveLength, 2)
			So(got[1].Note(), ShouldEqual, "long week")

			jobs, err := svc.Jobs(ctx, bugs.ID)
			So(err, ShouldBeNil)
			So(jobs, ShouldHaveLength, 1)
			So(jobs[0].Label(), ShouldEqual, "NETC EEO Informal Process Counselor")
		})

		Convey("When an entry is older than the last one", func() {
			err := svc.AddEntry(ctx, bugs.ID, eeo, employee.Technical, record.NewEntry(day(5), "", []float64{1, 1, 1}))
			So(errors.Is(err, record.ErrDisorderedDate), ShouldBeTrue)
		})

		Convey("When the metric count does not match the job", func() {
			err := svc.AddEntry(ctx, bugs.ID, eeo, employee.Technical, record.NewEntry(day(9), "", []float64{1}))
			So(errors.Is(err, survey.ErrArityMismatch), ShouldBeTrue)
		})

		Convey("When a personal answer is off the scale", func() {
			err := svc.AddEntry(ctx, bugs.ID, eeo, employee.Personal, record.NewEntry(day(9), "", []float64{1, 2, 3, 4, 9}))
			So(errors.Is(err, survey.ErrOutOfScale), ShouldBeTrue)
		})

		Convey("When a survey form is submitted", func() {
			e, err := svc.SubmitSurvey(ctx, bugs.ID, eeo, employee.Technical, []string{"2024-03-15", "2", "6", "1", "quiet"})
			So(err, ShouldBeNil)
			So(e.Metrics(), ShouldResemble, []float64{2, 6, 1})

			_, err = svc.SubmitSurvey(ctx, bugs.ID, eeo, employee.Technical, []string{"2024-03-16", "2", "quiet"})
			So(errors.Is(err, survey.ErrResponseCount), ShouldBeTrue)

			_, err = svc.SubmitSurvey(ctx, bugs.ID, model.NewJobID("9999"), employee.Technical, []string{"2024-03-16", "2", ""})
			So(errors.Is(err, service.ErrUnknownJob), ShouldBeTrue)
		})

		Convey("When an entry is updated", func() {
			So(svc.UpdateEntry(ctx, bugs.ID, eeo, employee.Technical, record.NewEntry(day(1), "fixed", []float64{5, 12, 2})), ShouldBeNil)
			So(svc.UpdateEntry(ctx, bugs.ID, eeo, employee.Technical, record.NewEntry(day(4), "late", []float64{6, 12, 2})), ShouldBeNil)

			got, err := svc.Entries(ctx, bugs.ID, eeo, employee.Technical, record.All())
			So(err, ShouldBeNil)
			So(got, ShouldHaveLength, 3)
			So(got[0].Note(), ShouldEqual, "fixed")
			So(got[1].Date(), ShouldEqual, day(4))
		})

		Convey("When an entry is removed", func() {
			So(svc.RemoveEntry(ctx, bugs.ID, eeo, employee.Technical, day(1)), ShouldBeNil)
			err := svc.RemoveEntry(ctx, bugs.ID, eeo, employee.Technical, day(1))
			So(errors.Is(err, service.ErrEntryNotFound), ShouldBeTrue)

			got, err := svc.Entries(ctx, bugs.ID, eeo, employee.Technical, record.All())
			So(err, ShouldBeNil)
			So(got, ShouldHaveLength, 1)
		})

		Convey("When the index is computed", func() {
			res, err := svc.Index(ctx, bugs.ID, eeo, employee.Technical, record.All())
			So(err, ShouldBeNil)
			So(res.Means, ShouldResemble, []float64{6, 18, 3})
			So(res.Index, ShouldResemble, []float64{1.5, 1.5, 1.5})

			res, err = svc.Index(ctx, bugs.ID, eeo, employee.Technical, record.Until(day(1)))
			So(err, ShouldBeNil)
			So(res.Index, ShouldResemble, []float64{1, 1, 1})

			_, err = svc.Index(ctx, bugs.ID, eeo, employee.Technical, record.Since(day(20)))
			So(err, ShouldNotBeNil)
		})

		Convey("When the personal index is computed", func() {
			So(svc.AddEntry(ctx, bugs.ID, eeo, employee.Personal, record.NewEntry(day(1), "", []float64{3, 3, 6.0 / 2, 1.5 * 2, 3})), ShouldBeNil)
			res, err := svc.Index(ctx, bugs.ID, eeo, employee.Personal, record.All())
			So(err, ShouldBeNil)
			So(res.Index, ShouldResemble, []float64{1, 1, 1, 1, 1})
		})
	})
}

func TestService_Import(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, _ := newService(t)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)

		rec := employee.New(bugs)
		So(rec.AddEntry(eeo, employee.Technical, record.NewEntry(day(1), "", []float64{1, 2, 3})), ShouldBeNil)

		Convey("When the history is new", func() {
			So(svc.Import(ctx, rec, false), ShouldBeNil)
			got, err := svc.Employee(ctx, bugs.ID)
			So(err, ShouldBeNil)
			So(got.Equal(rec), ShouldBeTrue)

			Convey("Then importing again needs replace", func() {
				So(errors.Is(svc.Import(ctx, rec, false), service.ErrEmployeeExists), ShouldBeTrue)
				So(svc.Import(ctx, employee.New(bugs), true), ShouldBeNil)
				got, err := svc.Employee(ctx, bugs.ID)
				So(err, ShouldBeNil)
				So(got.Len(), ShouldEqual, 0)
			})
		})
	})
}

func TestService_Unencodable(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, _ := newService(t)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When the employee name spans lines", func() {
			_, err := svc.CreateEmployee(ctx, model.NewEmployee("77777", "Bugs\nBunny"))
			So(errors.Is(err, codec.ErrUnencodable), ShouldBeTrue)

			Convey("Then nothing is stored", func() {
				_, err := svc.Employee(ctx, model.NewEmployeeID("77777"))
				So(errors.Is(err, service.ErrEmployeeNotFound), ShouldBeTrue)
			})
		})

		Convey("When the employee id holds the header separator", func() {
			_, err := svc.CreateEmployee(ctx, model.NewEmployee("a:b", "Bugs Bunny"))
			So(errors.Is(err, codec.ErrUnencodable), ShouldBeTrue)
			ids, err := svc.Employees(ctx, "")
			So(err, ShouldBeNil)
			So(ids, ShouldBeEmpty)
		})

		Convey("When an entry names a job with whitespace", func() {
			_, err := svc.CreateEmployee(ctx, bugs)
			So(err, ShouldBeNil)
			entry := record.NewEntry(day(1), "", []float64{1, 2, 3})

			err = svc.AddEntry(ctx, bugs.ID, model.NewJobID("senior dev"), employee.Technical, entry)
			So(errors.Is(err, codec.ErrUnencodable), ShouldBeTrue)
			err = svc.UpdateEntry(ctx, bugs.ID, model.NewJobID("senior dev"), employee.Technical, entry)
			So(errors.Is(err, codec.ErrUnencodable), ShouldBeTrue)
			err = svc.AddEntry(ctx, bugs.ID, model.NewJobID(""), employee.Personal, record.NewEntry(day(1), "", []float64{3, 3, 3, 3, 3}))
			So(errors.Is(err, codec.ErrUnencodable), ShouldBeTrue)

			Convey("Then the history still loads", func() {
				rec, err := svc.Employee(ctx, bugs.ID)
				So(err, ShouldBeNil)
				So(rec.Len(), ShouldEqual, 0)
			})
		})

		Convey("When an imported history cannot be encoded", func() {
			rec := employee.New(model.NewEmployee("88888", "Daffy\nDuck"))
			So(errors.Is(svc.Import(ctx, rec, true), codec.ErrUnencodable), ShouldBeTrue)
		})
	})
}

func TestService_ProfileChanged(t *testing.T) {
	Convey("Given technical entries recorded against a three-question job", t, func() {
		svc, _ := newService(t)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		_, err := svc.CreateEmployee(ctx, bugs)
		So(err, ShouldBeNil)
		So(svc.AddEntry(ctx, bugs.ID, eeo, employee.Technical, record.NewEntry(day(1), "", []float64{4, 12, 2})), ShouldBeNil)

		Convey("When the job is redefined with two questions", func() {
			So(svc.RegisterProfile(survey.Profile{Job: eeo, Title: "t", Questions: []string{"a", "b"}, Averages: []float64{1, 1}}), ShouldBeNil)

			Convey("Then the index reports an arity mismatch", func() {
				_, err := svc.Index(ctx, bugs.ID, eeo, employee.Technical, record.All())
				So(errors.Is(err, scoring.ErrDimensionMismatch), ShouldBeTrue)
			})
		})
	})
}

func TestService_RegisterProfile(t *testing.T) {
	Convey("Given an empty service", t, func() {
		svc := service.New()

		Convey("When a definition has no questions", func() {
			err := svc.RegisterProfile(survey.Profile{Job: eeo})
			So(errors.Is(err, service.ErrInvalidProfile), ShouldBeTrue)
		})

		Convey("When a definition is valid", func() {
			p := survey.Profile{Job: eeo, Title: "t", Questions: []string{"q"}, Averages: []float64{1}}
			So(svc.RegisterProfile(p), ShouldBeNil)
			_, err := svc.Profile(model.NewJobID("0260", "other label"))
			So(err, ShouldBeNil)
		})
	})
}
