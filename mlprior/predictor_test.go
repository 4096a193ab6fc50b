package mlprior

import (
	"errors"
	"testing"
)

func TestConstPredict(t *testing.T) {
	want := Estimate{Velocity: 120, Broadening: 35}
	p := Const{Estimate: want}

	got, err := p.Predict([]float64{0.1, 0.5, 0.2})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}

	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestConstPredictEmptyInput(t *testing.T) {
	p := Const{}

	if _, err := p.Predict(nil); !errors.Is(err, ErrEmptySpectrum) {
		t.Fatalf("got %v, want ErrEmptySpectrum", err)
	}
}

func TestEstimateDistributional(t *testing.T) {
	tests := []struct {
		name string
		est  Estimate
		want bool
	}{
		{"point", Estimate{Velocity: 100, Broadening: 20}, false},
		{"velocity sigma only", Estimate{VelocitySigma: 5}, true},
		{"broadening sigma only", Estimate{BroadeningSigma: 3}, true},
		{"both sigmas", Estimate{VelocitySigma: 5, BroadeningSigma: 3}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.est.Distributional(); got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNewONNXRequiresModelPath(t *testing.T) {
	if _, err := NewONNX(ONNXConfig{}); !errors.Is(err, ErrNoModelPath) {
		t.Fatalf("got %v, want ErrNoModelPath", err)
	}
}
