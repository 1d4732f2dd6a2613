package block

import "testing"

func TestMergeStateResolve(t *testing.T) {
	t.Parallel()

	cases := []struct {
		state       MergeState
		callerMerge bool
		want        bool
	}{
		{Default, true, true},
		{Default, false, false},
		{ExplicitOn, false, true},
		{ExplicitOn, true, true},
		{ExplicitOff, true, false},
		{ExplicitOff, false, false},
	}
	for _, c := range cases {
		if got := c.state.Resolve(c.callerMerge); got != c.want {
			t.Errorf("%v.Resolve(%v) = %v, want %v", c.state, c.callerMerge, got, c.want)
		}
	}
}

func TestMaybeParenthesizeWrapsConditionBlocksOnly(t *testing.T) {
	t.Parallel()

	field, err := NewWeekDayField(nil)
	if err != nil {
		t.Fatalf("NewWeekDayField: %v", err)
	}
	if got := maybeParenthesize(field); got != field.String() {
		t.Fatalf("field should not be parenthesized: got %q", got)
	}

	and := NewAndBlock([]Block{field})
	if got, want := maybeParenthesize(and), "("+and.String()+")"; got != want {
		t.Fatalf("AndBlock should be parenthesized: got %q, want %q", got, want)
	}

	or := NewOrBlock([]Block{field})
	if got, want := maybeParenthesize(or), "("+or.String()+")"; got != want {
		t.Fatalf("OrBlock should be parenthesized: got %q, want %q", got, want)
	}

	not := NewNotBlock(field)
	if got, want := maybeParenthesize(not), "("+not.String()+")"; got != want {
		t.Fatalf("NotBlock should be parenthesized: got %q, want %q", got, want)
	}
}

func TestDomainAsIntervalMatchesFields(t *testing.T) {
	t.Parallel()

	d := Domain{Start: 10, End: 20}
	iv := d.asInterval()
	if iv.Start != 10 || iv.End != 20 {
		t.Fatalf("asInterval() = %+v, want Start=10 End=20", iv)
	}
}
