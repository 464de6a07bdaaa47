package errors

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		kind     string
		err      error
		wantMsg  string
		hasStack bool
	}{
		{
			name:     "with original error",
			op:       "Fit",
			kind:     "invalid input",
			err:      fmt.Errorf("test error"),
			wantMsg:  "descent: Fit: invalid input: test error",
			hasStack: true,
		},
		{
			name:     "without original error",
			op:       "Predict",
			kind:     "not fitted",
			err:      nil,
			wantMsg:  "descent: Predict: not fitted",
			hasStack: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			if tt.hasStack {
				formatted := fmt.Sprintf("%+v", err)
				if !strings.Contains(formatted, "errors_test.go") {
					t.Error("Expected stack trace to contain test file name")
				}
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestNewConfigurationError(t *testing.T) {
	err := NewConfigurationError("initial_learning_rate", "must be in (0, 1)", 1.5)

	want := "descent: invalid configuration for parameter 'initial_learning_rate': must be in (0, 1) (got: 1.5)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	if !IsConfigurationError(err) {
		t.Error("IsConfigurationError should report true")
	}
	if !IsConfigurationError(Wrap(err, "resolving StepDecay")) {
		t.Error("IsConfigurationError should see through wrapping")
	}
	if IsConfigurationError(New("plain")) {
		t.Error("plain error is not a configuration error")
	}
}

func TestNewDataShapeError(t *testing.T) {
	err := NewDataShapeError("Tracker.Evaluate", []int{3}, []int{4})

	want := "descent: Tracker.Evaluate: shape mismatch. Expected shape [3], got [4]"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var shapeErr *DataShapeError
	if !As(err, &shapeErr) {
		t.Fatal("Error should be castable to *DataShapeError")
	}
	if shapeErr.Got[0] != 4 {
		t.Errorf("Got = %v", shapeErr.Got)
	}
}

func TestNewObserverError(t *testing.T) {
	cause := NewDataShapeError("Tracker.Evaluate", []int{3}, []int{4})
	err := NewObserverError("EarlyStop", "EpochEnd", cause)

	if !strings.Contains(err.Error(), "observer EarlyStop failed during EpochEnd") {
		t.Errorf("unexpected message: %v", err)
	}

	var obsErr *ObserverError
	if !As(err, &obsErr) {
		t.Fatal("Error should be castable to *ObserverError")
	}

	// 原因のエラー型まで辿れること
	var shapeErr *DataShapeError
	if !As(err, &shapeErr) {
		t.Error("cause should remain reachable through ObserverError")
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Predict", 10, 9, 1)

	want := "descent: Predict: dimension mismatch on axis 1 (features). Expected 10, got 9"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("GDRegressor", "Predict")

	want := "descent: GDRegressor: this model is not fitted yet. Call Fit() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestNewConvergenceWarning(t *testing.T) {
	warn := NewConvergenceWarning("GradientDescent", 1000, "train_cost did not plateau")

	want := "GradientDescent failed to converge after 1000 epochs: train_cost did not plateau"
	if warn.Error() != want {
		t.Errorf("Error() = %v, want %v", warn.Error(), want)
	}
}

func TestWarnRouting(t *testing.T) {
	prev := warningHandler
	defer SetWarningHandler(prev)

	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })

	Warn(NewConvergenceWarning("GradientDescent", 10, ""))
	if len(got) != 1 {
		t.Fatalf("expected one warning on the fallback handler, got %d", len(got))
	}

	var routed []error
	SetZerologWarnFunc(func(w error) { routed = append(routed, w) })
	defer SetZerologWarnFunc(nil)

	Warn(NewConvergenceWarning("GradientDescent", 10, ""))
	if len(routed) != 1 || len(got) != 1 {
		t.Errorf("zerolog function should take precedence: routed=%d fallback=%d", len(routed), len(got))
	}
}

func TestWithSecondaryError(t *testing.T) {
	primary := NewObserverError("GradientCheck", "EpochEnd", New("gradient mismatch"))
	secondary := New("report write failed")

	err := WithSecondaryError(primary, secondary)
	if err.Error() != primary.Error() {
		t.Errorf("primary message should be preserved, got %q", err.Error())
	}
	if !strings.Contains(fmt.Sprintf("%+v", err), "report write failed") {
		t.Error("secondary error should be visible in verbose formatting")
	}
}

func TestWrapAndIs(t *testing.T) {
	wrapped := Wrapf(ErrEmptyData, "in %s: expected %d, got %d", "Fit", 10, 0)

	if !Is(wrapped, ErrEmptyData) {
		t.Error("Expected Is(wrapped, ErrEmptyData) to be true")
	}
	if !strings.Contains(wrapped.Error(), "in Fit: expected 10, got 0") {
		t.Errorf("unexpected message: %v", wrapped)
	}
}

func TestNumericalChecks(t *testing.T) {
	if err := CheckScalar("epoch_cost", 1.5, 3); err != nil {
		t.Errorf("finite scalar should pass: %v", err)
	}
	if err := CheckScalar("epoch_cost", math.NaN(), 3); err == nil {
		t.Error("NaN should be reported")
	}

	v := mat.NewVecDense(3, []float64{1, math.Inf(1), 2})
	err := CheckVector("batch_gradient", v, 7)
	var numErr *NumericalInstabilityError
	if !As(err, &numErr) {
		t.Fatalf("expected NumericalInstabilityError, got %v", err)
	}
	if numErr.Epoch != 7 || len(numErr.Values) != 1 {
		t.Errorf("unexpected error contents: %+v", numErr)
	}

	if err := CheckNumericalStability("theta", []float64{0, 1}, 1); err != nil {
		t.Errorf("finite values should pass: %v", err)
	}

	nans := make([]float64, 12)
	for i := range nans {
		nans[i] = math.NaN()
	}
	err = CheckVector("theta", mat.NewVecDense(len(nans), nans), 3)
	if !As(err, &numErr) || len(numErr.Values) != 10 {
		t.Errorf("expected ten reported values, got %v", err)
	}
	err = CheckNumericalStability("theta", []float64{1, math.Inf(-1), 2}, 4)
	if !As(err, &numErr) || len(numErr.Values) != 1 || !math.IsInf(numErr.Values[0], -1) {
		t.Errorf("expected only the offending value, got %v", err)
	}
	if !As(CheckScalar("cost", math.NaN(), 5), &numErr) || numErr.Epoch != 5 {
		t.Error("CheckScalar should report NaN")
	}

	if SafeDivide(1, 0) != 0 {
		t.Error("SafeDivide by zero should return 0")
	}
	if StabilizeLog(0) != math.Log(1e-15) {
		t.Error("StabilizeLog should clip at epsilon")
	}
	if StabilizeExp(1000) != math.Exp(700) {
		t.Error("StabilizeExp should clip large inputs")
	}
}
