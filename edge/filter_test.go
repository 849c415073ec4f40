package edge

import "testing"

func TestFilterSmooth(t *testing.T) {
	tests := []struct {
		name   string
		pushes []float64
		want   float64
	}{
		{"first sample passes through", []float64{10}, 10},
		{"two samples averaged", []float64{10, 20}, 15},
		{"three samples averaged", []float64{10, 20, 30}, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFilter(5)
			var got float64
			for _, v := range tt.pushes {
				got = f.Smooth("temperature", v)
			}
			if got != tt.want {
				t.Errorf("Smooth() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterSmoothWindowEviction(t *testing.T) {
	f := NewFilter(2)
	f.Smooth("x", 100)
	f.Smooth("x", 0)
	got := f.Smooth("x", 0)
	if got != 0 {
		t.Errorf("window of 2 should have evicted the first 100, got %v", got)
	}
}

func TestIsOutlierZeroStdDevNeverFlags(t *testing.T) {
	f := NewFilter(10)
	for _, v := range []float64{10, 10, 10, 10} {
		f.Smooth("x", v)
	}
	if f.IsOutlier("x", 10.01, 0) {
		t.Error("zero stddev window should never flag an outlier")
	}
}

func TestIsOutlierRequiresThreeSamples(t *testing.T) {
	f := NewFilter(10)
	f.Smooth("x", 1)
	f.Smooth("x", 100)
	if f.IsOutlier("x", 1000, 3) {
		t.Error("fewer than 3 samples should never flag an outlier")
	}
}

func TestIsOutlierSigmaThreshold(t *testing.T) {
	f := NewFilter(20)
	for _, v := range []float64{10, 12, 8, 11, 9, 10, 11, 9} {
		f.Smooth("x", v)
	}
	if f.IsOutlier("x", 10.5, 3) {
		t.Error("value within 3 stddev should not be an outlier")
	}
	if !f.IsOutlier("x", 1000, 3) {
		t.Error("value far outside the window should be an outlier")
	}
}

func TestIsOutlierDefaultsWhenSigmaNonPositive(t *testing.T) {
	f := NewFilter(20)
	for _, v := range []float64{10, 12, 8, 11, 9, 10, 11, 9} {
		f.Smooth("x", v)
	}
	withDefault := f.IsOutlier("x", 1000, 0)
	withExplicit3 := f.IsOutlier("x", 1000, 3)
	if withDefault != withExplicit3 {
		t.Error("sigma <= 0 should default to 3")
	}
}
