package mlprior

import (
	"errors"
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	ErrNoModelPath  = errors.New("mlprior: model path is required")
	ErrOutputLength = errors.New("mlprior: unexpected network output length")
)

// ONNXConfig configures an ONNX-backed predictor.
type ONNXConfig struct {
	// ModelPath locates the .onnx network file.
	ModelPath string
	// LibraryPath optionally locates the onnxruntime shared library.
	LibraryPath string
	// InputName and OutputName default to "input" and "output".
	InputName  string
	OutputName string
	// MDN selects the distributional network variant, whose output is
	// (velocity, broadening, velocitySigma, broadeningSigma). The point
	// variant emits (velocity, broadening).
	MDN bool
}

// ONNX runs a velocity/broadening network through onnxruntime. The
// network input is the normalized spectrum shaped (1, n, 1).
type ONNX struct {
	cfg     ONNXConfig
	session *ort.DynamicAdvancedSession
}

// NewONNX loads the network and prepares an inference session. The
// onnxruntime environment is initialized on first use.
func NewONNX(cfg ONNXConfig) (*ONNX, error) {
	if cfg.ModelPath == "" {
		return nil, ErrNoModelPath
	}

	if cfg.InputName == "" {
		cfg.InputName = "input"
	}

	if cfg.OutputName == "" {
		cfg.OutputName = "output"
	}

	if !ort.IsInitialized() {
		if cfg.LibraryPath != "" {
			ort.SetSharedLibraryPath(cfg.LibraryPath)
		}

		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("mlprior: initialize onnxruntime: %w", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{cfg.InputName}, []string{cfg.OutputName}, nil)
	if err != nil {
		return nil, fmt.Errorf("mlprior: load model %q: %w", cfg.ModelPath, err)
	}

	return &ONNX{cfg: cfg, session: session}, nil
}

// Predict runs the network on the normalized spectrum.
func (o *ONNX) Predict(spectrum []float64) (Estimate, error) {
	if len(spectrum) == 0 {
		return Estimate{}, ErrEmptySpectrum
	}

	data := make([]float32, len(spectrum))
	for i, v := range spectrum {
		data[i] = float32(v)
	}

	input, err := ort.NewTensor(ort.NewShape(1, int64(len(spectrum)), 1), data)
	if err != nil {
		return Estimate{}, fmt.Errorf("mlprior: create input tensor: %w", err)
	}
	defer input.Destroy()

	outputs := []ort.Value{nil}

	if err := o.session.Run([]ort.Value{input}, outputs); err != nil {
		return Estimate{}, fmt.Errorf("mlprior: inference: %w", err)
	}

	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return Estimate{}, fmt.Errorf("mlprior: unexpected output tensor type %T", outputs[0])
	}
	defer out.Destroy()

	vals := out.GetData()

	want := 2
	if o.cfg.MDN {
		want = 4
	}

	if len(vals) < want {
		return Estimate{}, fmt.Errorf("%w: got %d, want %d", ErrOutputLength, len(vals), want)
	}

	est := Estimate{
		Velocity:   float64(vals[0]),
		Broadening: float64(vals[1]),
	}

	if o.cfg.MDN {
		est.VelocitySigma = float64(vals[2])
		est.BroadeningSigma = float64(vals[3])
	}

	return est, nil
}

// Close releases the inference session.
func (o *ONNX) Close() error {
	if o.session != nil {
		o.session.Destroy()
		o.session = nil
	}

	return nil
}
