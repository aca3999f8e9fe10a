package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDate(t *testing.T) {
	Convey("Given calendar days", t, func() {
		a := NewDate(2024, time.April, 25)
		b := NewDate(2024, time.October, 26)

		Convey("Then they order by year, month and day", func() {
			So(a.Compare(b), ShouldEqual, -1)
			So(b.Compare(a), ShouldEqual, 1)
			So(a.Compare(a), ShouldEqual, 0)
			So(a.Before(b), ShouldBeTrue)
			So(b.After(a), ShouldBeTrue)
			So(a.After(a), ShouldBeFalse)
			So(NewDate(2023, time.December, 31).Before(NewDate(2024, time.January, 1)), ShouldBeTrue)
		})

		Convey("Then out-of-range components normalize", func() {
			So(NewDate(2024, time.February, 30), ShouldEqual, NewDate(2024, time.March, 1))
			So(a.AddDays(7), ShouldEqual, NewDate(2024, time.May, 2))
			So(a.AddDays(-25), ShouldEqual, NewDate(2024, time.March, 31))
		})

		Convey("Then they format as YYYY-MM-DD", func() {
			So(a.String(), ShouldEqual, "2024-04-25")
			So(NewDate(987, time.January, 2).String(), ShouldEqual, "0987-01-02")
		})
	})

	Convey("Given textual dates", t, func() {
		Convey("When the text is a valid day", func() {
			d, err := ParseDate("2028-10-28")
			So(err, ShouldBeNil)
			So(d, ShouldEqual, NewDate(2028, time.October, 28))
		})

		Convey("When the text is not a day", func() {
			for _, s := range []string{"", "2024-13-01", "2024-02-30", "10/28/2028", "2024-1-5"} {
				_, err := ParseDate(s)
				So(errors.Is(err, ErrInvalidDate), ShouldBeTrue)
			}
		})

		Convey("When dates pass through JSON", func() {
			raw, err := json.Marshal(struct{ D Date }{NewDate(2024, time.March, 8)})
			So(err, ShouldBeNil)
			So(string(raw), ShouldEqual, `{"D":"2024-03-08"}`)

			var out struct{ D Date }
			So(json.Unmarshal(raw, &out), ShouldBeNil)
			So(out.D, ShouldEqual, NewDate(2024, time.March, 8))
			So(json.Unmarshal([]byte(`{"D":"soon"}`), &out), ShouldNotBeNil)
		})
	})

	Convey("The zero date is recognizable", t, func() {
		So(Date{}.IsZero(), ShouldBeTrue)
		So(Today().IsZero(), ShouldBeFalse)
	})
}

func TestID(t *testing.T) {
	Convey("Given job identifiers", t, func() {
		plain := NewJobID(" 1940 ")
		labelled := NewJobID("1940", "Rabbit hunter")

		Convey("Then equality ignores the label", func() {
			So(plain.Equal(labelled), ShouldBeTrue)
			So(plain.Formal(), ShouldEqual, "1940")
			So(labelled.Label(), ShouldEqual, "Rabbit hunter")
			So(plain.Label(), ShouldBeEmpty)
		})

		Convey("Then ordering uses the formal code", func() {
			So(NewJobID("1940", "z").Compare(NewJobID("1970", "a")), ShouldEqual, -1)
			So(labelled.Compare(plain), ShouldEqual, 0)
		})

		Convey("Then WithLabel returns a relabelled copy", func() {
			other := plain.WithLabel("Hunter")
			So(other.Label(), ShouldEqual, "Hunter")
			So(plain.Label(), ShouldBeEmpty)
			So(other.String(), ShouldEqual, "1940")
		})

		Convey("Then an empty code is zero", func() {
			So(NewJobID("  ").IsZero(), ShouldBeTrue)
			So(plain.IsZero(), ShouldBeFalse)
		})
	})

	Convey("Given employees", t, func() {
		bugs := NewEmployee("55555", "Bugs Bunny")
		So(bugs.Equal(NewEmployee("55555", "Bugs Bunny")), ShouldBeTrue)
		So(bugs.Equal(NewEmployee("55555", "Daffy Duck")), ShouldBeFalse)
		So(bugs.ID.Equal(NewEmployeeID("55555", "bugs")), ShouldBeTrue)
	})
}
