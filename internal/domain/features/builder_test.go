package features_test

import (
	"strings"
	"testing"

	"github.com/okian/enhealth/internal/domain/features"
	. "github.com/smartystreets/goconvey/convey"
)

// schemaOf returns the features a spec produces, in rule order.
func schemaOf(spec features.Spec) []string {
	out := make([]string, 0, len(spec.Rules))
	for _, r := range spec.Rules {
		out = append(out, r.Feature)
	}
	return out
}

var occupations = []string{
	"Doctor", "Engineer", "Lawyer", "Manager", "Nurse", "Sales Representative",
	"Salesperson", "Scientist", "Software Engineer", "Teacher",
}

func sleepSchema() []string {
	schema := schemaOf(features.Sleep)
	for _, o := range occupations {
		schema = append(schema, features.OccupationPrefix+o)
	}
	return schema
}

func diabetesPayload() map[string]any {
	return map[string]any{
		"age":                45.0,
		"familyHistory":      "yes",
		"bloodPressure":      "no",
		"bmi":                "27.4",
		"alcohol":            "Occasionally",
		"sleep":              7.0,
		"medicine":           "no",
		"junkFood":           "often",
		"stress":             "Very High",
		"bloodPressureLevel": "normal",
		"pregnancies":        0.0,
		"preDiabetes":        "n",
		"urination":          "very frequent",
	}
}

func lungPayload() map[string]any {
	p := map[string]any{"age": 61.0, "gender": "female"}
	for _, f := range features.Lung.Fields()[2:] {
		p[f] = "no"
	}
	p["smoking"] = "yes"
	return p
}

func covidPayload() map[string]any {
	p := map[string]any{}
	for _, f := range features.Covid.Fields() {
		p[f] = "no"
	}
	p["fever"] = "yes"
	return p
}

func sleepPayload() map[string]any {
	return map[string]any{
		"gender":           "Male",
		"age":              38.0,
		"sleepDuration":    6.1,
		"sleepQuality":     6.0,
		"physicalActivity": 42.0,
		"stressLevel":      7.0,
		"bmiCategory":      "Overweight",
		"heartRate":        77.0,
		"dailySteps":       4200.0,
		"systolicBP":       132.0,
		"diastolicBP":      87.0,
		"occupation":       "Software_Engineer",
	}
}

func TestBuildDiabetes(t *testing.T) {
	schema := schemaOf(features.Diabetes)

	Convey("Given a complete diabetes payload", t, func() {
		payload := diabetesPayload()

		Convey("When the vector is built", func() {
			vec, err := features.Build(features.Diabetes, schema, payload)

			Convey("Then every feature is encoded in schema order", func() {
				So(err, ShouldBeNil)
				So(vec.Names, ShouldResemble, schema)
				So(vec.Values, ShouldResemble, []float64{45, 1, 0, 27.4, 1, 7, 0, 3, 3, 1, 0, 0, 2})
			})
		})

		Convey("When the payload carries unknown keys", func() {
			payload["favouriteColour"] = "green"
			_, err := features.Build(features.Diabetes, schema, payload)

			Convey("Then they are ignored", func() {
				So(err, ShouldBeNil)
			})
		})

		Convey("When a categorical answer is outside the vocabulary", func() {
			payload["alcohol"] = "weekends"
			_, err := features.Build(features.Diabetes, schema, payload)

			Convey("Then the field and raw value are reported", func() {
				So(err.Error(), ShouldEqual, "alcohol has an unknown option: weekends")
			})
		})
	})
}

func TestBuildMissingField(t *testing.T) {
	models := []struct {
		spec    features.Spec
		schema  []string
		payload func() map[string]any
	}{
		{features.Diabetes, schemaOf(features.Diabetes), diabetesPayload},
		{features.Lung, schemaOf(features.Lung), lungPayload},
		{features.Covid, schemaOf(features.Covid), covidPayload},
		{features.Sleep, sleepSchema(), sleepPayload},
	}

	Convey("Given a payload missing exactly one required field", t, func() {
		for _, m := range models {
			for _, field := range m.spec.Fields() {
				payload := m.payload()
				delete(payload, field)

				_, err := features.Build(m.spec, m.schema, payload)

				Convey(m.spec.Name+" reports "+field, func() {
					var verr *features.ValidationError
					So(err, ShouldHaveSameTypeAs, verr)
					So(err.Error(), ShouldContainSubstring, field)
				})
			}
		}
	})
}

func TestBuildSchemaCoverage(t *testing.T) {
	Convey("Given a schema with a feature no rule produces", t, func() {
		schema := append(schemaOf(features.Covid), "Wears Mask", "Sanitization from Market")

		_, err := features.Build(features.Covid, schema, covidPayload())

		Convey("Then all uncovered features are listed in schema order", func() {
			So(err.Error(), ShouldEqual, "Missing values for: Wears Mask, Sanitization from Market")
		})
	})

	Convey("Given a schema narrower than the rules", t, func() {
		schema := []string{"Fever", "Dry Cough"}

		vec, err := features.Build(features.Covid, schema, covidPayload())

		Convey("Then extra values are dropped", func() {
			So(err, ShouldBeNil)
			So(vec.Values, ShouldResemble, []float64{1, 0})
		})
	})
}

func TestBuildSleepOccupation(t *testing.T) {
	schema := sleepSchema()

	Convey("Given a sleep payload", t, func() {
		payload := sleepPayload()

		Convey("When the occupation uses underscores and odd casing", func() {
			for _, variant := range []string{"Software_Engineer", "software engineer", "SOFTWARE_ENGINEER"} {
				payload["occupation"] = variant
				vec, err := features.Build(features.Sleep, schema, payload)
				So(err, ShouldBeNil)

				hot := 0
				for i, name := range vec.Names {
					if name == features.OccupationPrefix+"Software Engineer" {
						So(vec.Values[i], ShouldEqual, 1)
					}
					if vec.Values[i] == 1 && strings.HasPrefix(name, features.OccupationPrefix) {
						hot++
					}
				}
				So(hot, ShouldEqual, 1)
			}
		})

		Convey("When the occupation is unknown", func() {
			payload["occupation"] = "astronaut"
			_, err := features.Build(features.Sleep, schema, payload)

			Convey("Then it is a validation error, not a default", func() {
				So(err.Error(), ShouldEqual, "occupation has an unknown option: astronaut")
			})
		})

		Convey("When both gender and occupation are missing", func() {
			delete(payload, "gender")
			delete(payload, "occupation")
			_, err := features.Build(features.Sleep, schema, payload)

			Convey("Then the occupation is reported first", func() {
				So(err.Error(), ShouldEqual, "occupation is required")
			})
		})

		Convey("When the BMI category is unknown", func() {
			payload["bmiCategory"] = "athletic"
			_, err := features.Build(features.Sleep, schema, payload)

			Convey("Then the field is named", func() {
				So(err.Error(), ShouldEqual, "bmiCategory has an unknown option: athletic")
			})
		})

		Convey("When the base fields are encoded", func() {
			vec, err := features.Build(features.Sleep, schema, payload)

			Convey("Then gender and BMI use their ordinal codes", func() {
				So(err, ShouldBeNil)
				So(vec.Values[0], ShouldEqual, 1)
				So(vec.Values[6], ShouldEqual, 1)
			})
		})
	})
}

func TestSpecFieldsOrder(t *testing.T) {
	Convey("Given the sleep spec", t, func() {
		fields := features.Sleep.Fields()

		Convey("Then the occupation leads the evaluation order", func() {
			So(fields[0], ShouldEqual, "occupation")
			So(fields[len(fields)-1], ShouldEqual, "diastolicBP")
			So(fields, ShouldHaveLength, 12)
		})
	})
}

func TestSpecUncovered(t *testing.T) {
	Convey("Given the sleep spec", t, func() {
		Convey("When the schema matches what the rules produce", func() {
			Convey("Then nothing is uncovered", func() {
				So(features.Sleep.Uncovered(sleepSchema()), ShouldBeEmpty)
			})
		})

		Convey("When the schema has features outside the rules", func() {
			schema := append(sleepSchema(), "Occupation_Pilot", "Caffeine Intake")

			Convey("Then only non one-hot extras are reported", func() {
				So(features.Sleep.Uncovered(schema), ShouldResemble, []string{"Caffeine Intake"})
			})
		})
	})
}
