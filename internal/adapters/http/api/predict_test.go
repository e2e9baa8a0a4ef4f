package api

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestCoercion(t *testing.T) {
	convey.Convey("Given numeric wire values", t, func() {
		convey.Convey("When coercing integers", func() {
			v, err := toInt(json.Number("3"))
			convey.So(err, convey.ShouldBeNil)
			convey.So(v, convey.ShouldEqual, 3)

			v, err = toInt(json.Number("2.0"))
			convey.So(err, convey.ShouldBeNil)
			convey.So(v, convey.ShouldEqual, 2)

			_, err = toInt(json.Number("2.5"))
			convey.So(err, convey.ShouldNotBeNil)

			_, err = toInt(json.Number("1e20"))
			convey.So(err, convey.ShouldNotBeNil)

			v, err = toInt(json.Number("-7"))
			convey.So(err, convey.ShouldBeNil)
			convey.So(v, convey.ShouldEqual, -7)
		})

		convey.Convey("When an integer is outside the int32 range", func() {
			for _, n := range []string{"9999999999", "9999999999.0", "-9999999999", "2147483648"} {
				_, err := toInt(json.Number(n))
				convey.So(err, convey.ShouldNotBeNil)
			}
		})

		convey.Convey("When an integer sits on the int32 bounds", func() {
			v, err := toInt(json.Number("2147483647"))
			convey.So(err, convey.ShouldBeNil)
			convey.So(v, convey.ShouldEqual, math.MaxInt32)

			v, err = toInt(json.Number("-2147483648.0"))
			convey.So(err, convey.ShouldBeNil)
			convey.So(v, convey.ShouldEqual, math.MinInt32)
		})

		convey.Convey("When coercing floats", func() {
			v, err := toFloat(json.Number("27.5"))
			convey.So(err, convey.ShouldBeNil)
			convey.So(v, convey.ShouldEqual, 27.5)

			_, err = toFloat(json.Number("NaN"))
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestErrorClassification(t *testing.T) {
	convey.Convey("Given HTTP status codes", t, func() {
		convey.So(getErrorType(http.StatusInternalServerError), convey.ShouldEqual, "server_error")
		convey.So(getErrorType(http.StatusUnprocessableEntity), convey.ShouldEqual, "validation_error")
		convey.So(getErrorType(http.StatusMethodNotAllowed), convey.ShouldEqual, "client_error")
		convey.So(getErrorType(http.StatusNotFound), convey.ShouldEqual, "not_found")
		convey.So(getErrorSeverity(http.StatusInternalServerError), convey.ShouldEqual, "high")
		convey.So(getErrorSeverity(http.StatusRequestEntityTooLarge), convey.ShouldEqual, "medium")
	})
}

func TestWriteJSON(t *testing.T) {
	convey.Convey("Given a value JSON cannot encode", t, func() {
		w := httptest.NewRecorder()
		writeJSON(w, http.StatusOK, Result{Probability: []float64{math.Inf(1)}})

		convey.Convey("Then the status becomes 500 with a detail body", func() {
			convey.So(w.Code, convey.ShouldEqual, http.StatusInternalServerError)
			convey.So(w.Body.String(), convey.ShouldEqual, encodeFailureBody)
		})
	})

	convey.Convey("Given an encodable value", t, func() {
		w := httptest.NewRecorder()
		writeJSON(w, http.StatusCreated, Result{Prediction: 1})

		convey.Convey("Then the status and body are written", func() {
			convey.So(w.Code, convey.ShouldEqual, http.StatusCreated)
			convey.So(w.Body.String(), convey.ShouldEqual, `{"prediction":1,"probability":null}`+"\n")
		})
	})
}
