package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/okian/diabetes-predictor/internal/adapters/artifact"
	service "github.com/okian/diabetes-predictor/internal/app"
	"github.com/okian/diabetes-predictor/internal/domain/features"
	"github.com/okian/diabetes-predictor/internal/domain/predictor"
	"github.com/okian/diabetes-predictor/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

type stubModel struct {
	label int
	probs []float64
}

func (m *stubModel) Classify(x [][]float64) ([]int, error) { return []int{m.label}, nil }

func (m *stubModel) Scores(x [][]float64) ([][]float64, error) {
	return [][]float64{m.probs}, nil
}

type narrowModel struct{ stubModel }

func (narrowModel) NumFeatures() int { return 5 }

func stubLoader(c predictor.Classifier, err error) service.Loader {
	return func(context.Context, string) (predictor.Classifier, error) { return c, err }
}

func sample() features.Request {
	return features.Request{BMI: 27.32, HbA1cLevel: 6.6, BloodGlucoseLevel: 140.0, AgeCategory: 2}
}

func TestService_Start(t *testing.T) {
	Convey("Given a service with a stub model", t, func() {
		loads := 0
		model := &stubModel{label: 0, probs: []float64{0.9, 0.1}}
		svc := service.New(service.WithLoader(func(context.Context, string) (predictor.Classifier, error) {
			loads++
			return model, nil
		}))
		defer svc.Stop()
		ctx := context.Background()

		Convey("When it has not started", func() {
			_, err := svc.Predict(ctx, sample())

			Convey("Then predictions are unavailable", func() {
				So(errors.Is(err, predictor.ErrUnavailable), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "model not loaded yet")
			})
		})

		Convey("When starting the service", func() {
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then it serves the stub's answer", func() {
				res, err := svc.Predict(ctx, sample())
				So(err, ShouldBeNil)
				So(res, ShouldResemble, predictor.Result{Prediction: 0, Probability: []float64{0.9, 0.1}})
				So(svc.Started(), ShouldBeTrue)
			})

			Convey("And a second start is rejected", func() {
				So(errors.Is(svc.Start(ctx), service.ErrAlreadyStarted), ShouldBeTrue)
			})

			Convey("And status reports a loaded model", func() {
				st := svc.Status(ctx)
				So(st.Loaded, ShouldBeTrue)
				So(st.Probabilities, ShouldBeTrue)
			})
		})

		Convey("When stopping the service", func() {
			So(svc.Start(ctx), ShouldBeNil)
			svc.Stop()
			svc.Stop()

			Convey("Then the model is released", func() {
				So(svc.Started(), ShouldBeFalse)
				_, err := svc.Predict(ctx, sample())
				So(errors.Is(err, predictor.ErrUnavailable), ShouldBeTrue)
			})

			Convey("And it cannot be started again", func() {
				err := svc.Start(ctx)
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldEqual, "service stopped")
				So(svc.Started(), ShouldBeFalse)
				So(svc.Status(ctx).Loaded, ShouldBeFalse)
				So(loads, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a loader that fails", t, func() {
		svc := service.New(service.WithLoader(stubLoader(nil, errors.New("unexpected EOF"))))
		defer svc.Stop()
		ctx := context.Background()

		Convey("When starting the service", func() {
			err := svc.Start(ctx)

			Convey("Then the process keeps running in degraded mode", func() {
				So(err, ShouldBeNil)
				So(svc.Started(), ShouldBeTrue)
				st := svc.Status(ctx)
				So(st.Loaded, ShouldBeFalse)
				So(st.Error, ShouldEqual, "unexpected EOF")
			})

			Convey("And predictions carry the load reason", func() {
				_, err := svc.Predict(ctx, sample())
				So(errors.Is(err, predictor.ErrUnavailable), ShouldBeTrue)
				So(err.Error(), ShouldEqual, "model not loaded: unexpected EOF")
			})
		})
	})

	Convey("Given a model trained on the wrong width", t, func() {
		svc := service.New(service.WithLoader(stubLoader(&narrowModel{}, nil)))
		defer svc.Stop()
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("Then the shape check keeps it unloaded", func() {
			_, err := svc.Predict(ctx, sample())
			So(errors.Is(err, predictor.ErrUnavailable), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "feature width mismatch")
		})
	})
}

func TestService_ArtifactLoader(t *testing.T) {
	Convey("Given the default artifact loader", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		path := filepath.Join(dir, "model.gob")

		Convey("When the artifact is missing", func() {
			svc := service.New(service.WithModelPath(path))
			defer svc.Stop()
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then predictions are unavailable with a not found reason", func() {
				_, err := svc.Predict(ctx, sample())
				So(errors.Is(err, predictor.ErrUnavailable), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "model file not found at "+path)
			})
		})

		Convey("When the artifact holds a logistic model", func() {
			coef := [][]float64{{0.2, 0.5, 0.6, 0.1, 0.08, 2.4, 0.033, 0.9}}
			m, err := artifact.NewLogistic([]int{0, 1}, coef, []float64{-25})
			So(err, ShouldBeNil)
			So(artifact.Save(path, m), ShouldBeNil)

			svc := service.New(service.WithModelPath(path))
			defer svc.Stop()
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then predictions are integers with one probability per class", func() {
				res, err := svc.Predict(ctx, sample())
				So(err, ShouldBeNil)
				So(res.Prediction, ShouldBeIn, []int{0, 1})
				So(len(res.Probability), ShouldEqual, 2)
				So(res.Probability[0]+res.Probability[1], ShouldAlmostEqual, 1.0)
				So(svc.Status(ctx).Kind, ShouldEqual, artifact.KindLogistic)
			})
		})

		Convey("When the artifact holds a label-only model", func() {
			m, err := artifact.NewCentroid([]int{0, 1}, [][]float64{make([]float64, 8), {1, 1, 1, 1, 40, 9, 300, 2}})
			So(err, ShouldBeNil)
			So(artifact.Save(path, m), ShouldBeNil)

			svc := service.New(service.WithModelPath(path))
			defer svc.Stop()
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then probabilities are absent", func() {
				res, err := svc.Predict(ctx, sample())
				So(err, ShouldBeNil)
				So(res.Probability, ShouldBeNil)
			})
		})
	})
}

func TestService_ConcurrentPredict(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(service.WithLoader(stubLoader(&stubModel{label: 1, probs: []float64{0.2, 0.8}}, nil)))
		defer svc.Stop()
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When many requests predict at once", func() {
			var wg sync.WaitGroup
			errs := make(chan error, 64)
			for i := 0; i < 64; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					res, err := svc.Predict(ctx, sample())
					if err == nil && res.Prediction != 1 {
						err = errors.New("unexpected label")
					}
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)

			Convey("Then every request succeeds", func() {
				for err := range errs {
					So(err, ShouldBeNil)
				}
			})
		})
	})
}
