package record_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/ewi/internal/domain/model"
	"github.com/okian/ewi/internal/domain/record"
	. "github.com/smartystreets/goconvey/convey"
)

func day(y int, m time.Month, d int) model.Date { return model.NewDate(y, m, d) }

func sampleRecord() *record.Record {
	rec, err := record.New([]record.Entry{
		record.NewEntry(day(2024, time.April, 25), "first", []float64{1, 2, 3}),
		record.NewEntry(day(2024, time.October, 26), "second", []float64{4, 5, 6}),
		record.NewEntry(day(2025, time.September, 27), "third", []float64{7, 8, 9}),
		record.NewEntry(day(2028, time.October, 28), "fourth", []float64{10, 11, 12}),
	})
	if err != nil {
		panic(err)
	}
	return rec
}

func TestNew(t *testing.T) {
	Convey("Given a list of entries", t, func() {
		Convey("When the dates ascend and the arity is uniform", func() {
			rec, err := record.New([]record.Entry{
				record.NewEntry(day(2024, 1, 1), "", []float64{1, 2}),
				record.NewEntry(day(2024, 1, 2), "", []float64{3, 4}),
			})

			Convey("Then the record keeps order and arity", func() {
				So(err, ShouldBeNil)
				So(rec.Len(), ShouldEqual, 2)
				So(rec.MetricDim(), ShouldEqual, 2)
				So(rec.At(0).Date(), ShouldEqual, day(2024, 1, 1))
				So(rec.At(1).Date(), ShouldEqual, day(2024, 1, 2))
			})
		})

		Convey("When two entries share a date", func() {
			_, err := record.New([]record.Entry{
				record.NewEntry(day(2024, 1, 1), "", []float64{1}),
				record.NewEntry(day(2024, 1, 1), "", []float64{2}),
			})

			Convey("Then construction fails with ErrDisorderedDate", func() {
				So(errors.Is(err, record.ErrDisorderedDate), ShouldBeTrue)
			})
		})

		Convey("When arities differ", func() {
			_, err := record.New([]record.Entry{
				record.NewEntry(day(2024, 1, 1), "", []float64{1}),
				record.NewEntry(day(2024, 1, 2), "", []float64{2, 3}),
			})

			Convey("Then construction fails with ErrInconsistentMetrics", func() {
				So(errors.Is(err, record.ErrInconsistentMetrics), ShouldBeTrue)
			})
		})
	})
}

func TestAdd(t *testing.T) {
	Convey("Given an empty record", t, func() {
		var rec record.Record

		So(rec.IsEmpty(), ShouldBeTrue)
		So(rec.MetricDim(), ShouldEqual, 0)

		Convey("When adding the first entry", func() {
			err := rec.Add(record.NewEntry(day(2024, 5, 1), "note", []float64{1, 2, 3}))

			Convey("Then it succeeds and fixes the metric dimension", func() {
				So(err, ShouldBeNil)
				So(rec.Len(), ShouldEqual, 1)
				So(rec.MetricDim(), ShouldEqual, 3)
			})

			Convey("And a later entry with the same arity is appended", func() {
				So(rec.Add(record.NewEntry(day(2024, 5, 2), "", []float64{4, 5, 6})), ShouldBeNil)
				So(rec.Len(), ShouldEqual, 2)
			})

			Convey("And an entry on the same date is rejected", func() {
				err := rec.Add(record.NewEntry(day(2024, 5, 1), "", []float64{4, 5, 6}))
				So(errors.Is(err, record.ErrDisorderedDate), ShouldBeTrue)
				So(rec.Len(), ShouldEqual, 1)
			})

			Convey("And an earlier entry is rejected", func() {
				err := rec.Add(record.NewEntry(day(2024, 4, 30), "", []float64{4, 5, 6}))
				So(errors.Is(err, record.ErrDisorderedDate), ShouldBeTrue)
				So(rec.Len(), ShouldEqual, 1)
			})

			Convey("And an entry with a different arity is rejected", func() {
				err := rec.Add(record.NewEntry(day(2024, 5, 2), "", []float64{4, 5}))
				So(errors.Is(err, record.ErrInconsistentMetrics), ShouldBeTrue)
				So(rec.Len(), ShouldEqual, 1)
			})

			Convey("And a date failure wins over an arity failure", func() {
				err := rec.Add(record.NewEntry(day(2024, 4, 1), "", []float64{4}))
				So(errors.Is(err, record.ErrDisorderedDate), ShouldBeTrue)
			})
		})
	})
}

func TestFind(t *testing.T) {
	Convey("Given the sample record", t, func() {
		rec := sampleRecord()

		Convey("When finding an existing date", func() {
			i, ok := rec.Find(day(2025, time.September, 27))
			So(ok, ShouldBeTrue)
			So(i, ShouldEqual, 2)
		})

		Convey("When finding a missing date", func() {
			_, ok := rec.Find(day(2025, time.September, 28))
			So(ok, ShouldBeFalse)
		})

		Convey("When finding in an empty record", func() {
			var empty record.Record
			_, ok := empty.Find(day(2025, time.September, 27))
			So(ok, ShouldBeFalse)
		})

		Convey("When getting an entry by date", func() {
			e, ok := rec.Get(day(2024, time.October, 26))
			So(ok, ShouldBeTrue)
			So(e.Note(), ShouldEqual, "second")

			Convey("Then the copy does not alias the record", func() {
				e.Metrics()[0] = 99
				So(rec.At(1).Metrics()[0], ShouldEqual, 4)
			})
		})
	})
}

func TestFindRange(t *testing.T) {
	Convey("Given the sample record", t, func() {
		rec := sampleRecord()

		Convey("Open lower bound after the third entry", func() {
			span, ok := rec.FindRange(record.Since(day(2026, 1, 1)))
			So(ok, ShouldBeTrue)
			So(span, ShouldResemble, record.IndexRange{Min: 3, Max: 3})
		})

		Convey("Open upper bound before the last entry", func() {
			span, ok := rec.FindRange(record.Until(day(2025, 12, 31)))
			So(ok, ShouldBeTrue)
			So(span, ShouldResemble, record.IndexRange{Min: 0, Max: 2})
		})

		Convey("Closed window in the middle", func() {
			span, ok := rec.FindRange(record.Between(day(2024, 6, 20), day(2025, 12, 31)))
			So(ok, ShouldBeTrue)
			So(span, ShouldResemble, record.IndexRange{Min: 1, Max: 2})
		})

		Convey("Upper bound before every entry", func() {
			_, ok := rec.FindRange(record.Until(day(1999, 12, 31)))
			So(ok, ShouldBeFalse)
		})

		Convey("Lower bound after every entry", func() {
			_, ok := rec.FindRange(record.Since(day(2030, 1, 1)))
			So(ok, ShouldBeFalse)
		})

		Convey("Fully open window", func() {
			span, ok := rec.FindRange(record.All())
			So(ok, ShouldBeTrue)
			So(span, ShouldResemble, record.IndexRange{Min: 0, Max: 3})
		})

		Convey("Window falling between two entries", func() {
			_, ok := rec.FindRange(record.Between(day(2024, 5, 1), day(2024, 6, 1)))
			So(ok, ShouldBeFalse)
		})

		Convey("Inverted window", func() {
			_, ok := rec.FindRange(record.Between(day(2028, 1, 1), day(2024, 1, 1)))
			So(ok, ShouldBeFalse)
		})

		Convey("Bounds matching the first and last entries exactly", func() {
			span, ok := rec.FindRange(record.Between(day(2024, time.April, 25), day(2028, time.October, 28)))
			So(ok, ShouldBeTrue)
			So(span, ShouldResemble, record.IndexRange{Min: 0, Max: 3})
		})

		Convey("Lower bound exactly on the last entry", func() {
			span, ok := rec.FindRange(record.Since(day(2028, time.October, 28)))
			So(ok, ShouldBeTrue)
			So(span, ShouldResemble, record.IndexRange{Min: 3, Max: 3})
		})

		Convey("Upper bound exactly on the first entry", func() {
			span, ok := rec.FindRange(record.Until(day(2024, time.April, 25)))
			So(ok, ShouldBeTrue)
			So(span, ShouldResemble, record.IndexRange{Min: 0, Max: 0})
		})

		Convey("A single-day window agrees with Find for every date", func() {
			for _, e := range rec.Entries() {
				i, _ := rec.Find(e.Date())
				span, ok := rec.FindRange(record.On(e.Date()))
				So(ok, ShouldBeTrue)
				So(span, ShouldResemble, record.IndexRange{Min: i, Max: i})
			}
			_, ok := rec.FindRange(record.On(day(2025, 1, 1)))
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given an empty record", t, func() {
		var rec record.Record

		Convey("Every window is empty", func() {
			_, ok := rec.FindRange(record.All())
			So(ok, ShouldBeFalse)
			_, ok = rec.FindRange(record.Since(day(2024, 1, 1)))
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given a one-entry record", t, func() {
		var rec record.Record
		So(rec.Add(record.NewEntry(day(2024, 3, 3), "", []float64{1})), ShouldBeNil)

		Convey("Bounds around the entry include it", func() {
			span, ok := rec.FindRange(record.Between(day(2024, 1, 1), day(2024, 12, 31)))
			So(ok, ShouldBeTrue)
			So(span, ShouldResemble, record.IndexRange{Min: 0, Max: 0})
		})

		Convey("Bounds on either side exclude it", func() {
			_, ok := rec.FindRange(record.Since(day(2024, 3, 4)))
			So(ok, ShouldBeFalse)
			_, ok = rec.FindRange(record.Until(day(2024, 3, 2)))
			So(ok, ShouldBeFalse)
		})

		Convey("A bound equal to the entry includes it", func() {
			span, ok := rec.FindRange(record.Since(day(2024, 3, 3)))
			So(ok, ShouldBeTrue)
			So(span, ShouldResemble, record.IndexRange{Min: 0, Max: 0})
			span, ok = rec.FindRange(record.Until(day(2024, 3, 3)))
			So(ok, ShouldBeTrue)
			So(span, ShouldResemble, record.IndexRange{Min: 0, Max: 0})
		})
	})

	Convey("Given a two-entry record", t, func() {
		var rec record.Record
		So(rec.Add(record.NewEntry(day(2024, 3, 3), "", []float64{1})), ShouldBeNil)
		So(rec.Add(record.NewEntry(day(2024, 3, 10), "", []float64{2})), ShouldBeNil)

		Convey("A lower bound between them selects the second", func() {
			span, ok := rec.FindRange(record.Since(day(2024, 3, 5)))
			So(ok, ShouldBeTrue)
			So(span, ShouldResemble, record.IndexRange{Min: 1, Max: 1})
		})

		Convey("An upper bound between them selects the first", func() {
			span, ok := rec.FindRange(record.Until(day(2024, 3, 5)))
			So(ok, ShouldBeTrue)
			So(span, ShouldResemble, record.IndexRange{Min: 0, Max: 0})
		})

		Convey("An upper bound on the last entry selects both", func() {
			span, ok := rec.FindRange(record.Until(day(2024, 3, 10)))
			So(ok, ShouldBeTrue)
			So(span, ShouldResemble, record.IndexRange{Min: 0, Max: 1})
		})
	})
}

func TestUpdateAndRemove(t *testing.T) {
	Convey("Given the sample record", t, func() {
		rec := sampleRecord()

		Convey("When updating an existing date", func() {
			rec.Update(record.NewEntry(day(2024, time.October, 26), "revised", []float64{0, 0, 0}))

			Convey("Then the entry is replaced in place", func() {
				So(rec.Len(), ShouldEqual, 4)
				So(rec.At(1).Note(), ShouldEqual, "revised")
				So(rec.At(1).Metrics(), ShouldResemble, []float64{0, 0, 0})
			})
		})

		Convey("When updating with a new date", func() {
			rec.Update(record.NewEntry(day(2025, 1, 1), "inserted", []float64{1, 1, 1}))

			Convey("Then it is inserted and the record stays sorted", func() {
				So(rec.Len(), ShouldEqual, 5)
				So(rec.At(2).Note(), ShouldEqual, "inserted")
				for i := 1; i < rec.Len(); i++ {
					So(rec.At(i).Date().After(rec.At(i-1).Date()), ShouldBeTrue)
				}
			})
		})

		Convey("When removing an existing date", func() {
			rec.Remove(day(2025, time.September, 27))

			Convey("Then the entry is gone", func() {
				So(rec.Len(), ShouldEqual, 3)
				_, ok := rec.Find(day(2025, time.September, 27))
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When removing a missing date", func() {
			before := rec.Clone()
			rec.Remove(day(2000, 1, 1))

			Convey("Then nothing changes", func() {
				So(rec.Equal(before), ShouldBeTrue)
			})
		})
	})
}

func TestMetricViews(t *testing.T) {
	Convey("Given the sample record", t, func() {
		rec := sampleRecord()

		Convey("Metrics for a window are views of the stored vectors", func() {
			rows := rec.Metrics(record.Between(day(2024, 6, 1), day(2026, 1, 1)))
			So(rows, ShouldResemble, [][]float64{{4, 5, 6}, {7, 8, 9}})

			rows[0][0] = 40
			So(rec.At(1).Metrics()[0], ShouldEqual, 40)
		})

		Convey("Metrics for an empty window are nil", func() {
			So(rec.Metrics(record.Until(day(2000, 1, 1))), ShouldBeNil)
		})

		Convey("MetricsAt resolves a single date", func() {
			row, ok := rec.MetricsAt(day(2028, time.October, 28))
			So(ok, ShouldBeTrue)
			So(row, ShouldResemble, []float64{10, 11, 12})
		})

		Convey("Matrix returns every row", func() {
			So(len(rec.Matrix()), ShouldEqual, 4)
		})
	})
}

func TestEntryEquality(t *testing.T) {
	Convey("Given two entries", t, func() {
		a := record.NewEntry(day(2024, 1, 1), "x", []float64{1, 2})

		Convey("Equal compares every field", func() {
			So(a.Equal(record.NewEntry(day(2024, 1, 1), "x", []float64{1, 2})), ShouldBeTrue)
			So(a.Equal(record.NewEntry(day(2024, 1, 1), "y", []float64{1, 2})), ShouldBeFalse)
			So(a.Equal(record.NewEntry(day(2024, 1, 1), "x", []float64{1})), ShouldBeFalse)
		})

		Convey("Compare looks at the date only", func() {
			So(a.Compare(record.NewEntry(day(2024, 1, 1), "other", nil)), ShouldEqual, 0)
			So(a.Compare(record.NewEntry(day(2024, 1, 2), "x", []float64{1, 2})), ShouldEqual, -1)
		})
	})
}
