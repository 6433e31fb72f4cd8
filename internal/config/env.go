package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment variable read by LoadEnv
const EnvPrefix = "DESKGATE"

var durationType = reflect.TypeOf(time.Duration(0))

// LoadEnv loads configuration from environment variables. Names are derived
// from the yaml tags below the deskgate root, e.g. DESKGATE_AUTH_SECRET or
// DESKGATE_RATELIMIT_GROUPS_LOGIN_MAX.
func LoadEnv(cfg *Config) error {
	return loadEnvStruct(reflect.ValueOf(&cfg.Deskgate).Elem(), EnvPrefix)
}

// loadEnvStruct recursively loads environment variables into a struct
func loadEnvStruct(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		// Skip unexported fields
		if !field.CanSet() {
			continue
		}

		envKey, ok := envName(fieldType, prefix)
		if !ok {
			continue
		}

		if field.Type() == durationType {
			if val := os.Getenv(envKey); val != "" {
				d, err := time.ParseDuration(val)
				if err != nil {
					return fmt.Errorf("invalid duration value for %s: %w", envKey, err)
				}
				field.SetInt(int64(d))
			}
			continue
		}

		switch field.Kind() {
		case reflect.String:
			if val := os.Getenv(envKey); val != "" {
				field.SetString(val)
			}

		case reflect.Int, reflect.Int64:
			if val := os.Getenv(envKey); val != "" {
				intVal, err := strconv.ParseInt(val, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid int value for %s: %w", envKey, err)
				}
				field.SetInt(intVal)
			}

		case reflect.Float64:
			if val := os.Getenv(envKey); val != "" {
				floatVal, err := strconv.ParseFloat(val, 64)
				if err != nil {
					return fmt.Errorf("invalid float value for %s: %w", envKey, err)
				}
				field.SetFloat(floatVal)
			}

		case reflect.Bool:
			if val := os.Getenv(envKey); val != "" {
				boolVal, err := strconv.ParseBool(val)
				if err != nil {
					return fmt.Errorf("invalid bool value for %s: %w", envKey, err)
				}
				field.SetBool(boolVal)
			}

		case reflect.Slice:
			// String slices are comma-separated
			if val := os.Getenv(envKey); val != "" && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(val, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for i, part := range parts {
					slice.Index(i).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}

		case reflect.Struct:
			if err := loadEnvStruct(field, envKey); err != nil {
				return err
			}

		case reflect.Ptr:
			if field.IsNil() {
				if !hasEnvVarsWithPrefix(envKey) {
					continue
				}
				field.Set(reflect.New(field.Type().Elem()))
			}
			if err := loadEnvStruct(field.Elem(), envKey); err != nil {
				return err
			}
		}
	}

	return nil
}

// envName derives the variable name of a field from its yaml tag
func envName(field reflect.StructField, prefix string) (string, bool) {
	yamlTag := field.Tag.Get("yaml")
	if yamlTag == "" || yamlTag == "-" {
		return "", false
	}
	name := strings.Split(yamlTag, ",")[0]
	return fmt.Sprintf("%s_%s", prefix, strings.ToUpper(name)), true
}

// hasEnvVarsWithPrefix checks if any environment variables exist with the given prefix
func hasEnvVarsWithPrefix(prefix string) bool {
	prefix = prefix + "_"
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, prefix) {
			return true
		}
	}
	return false
}

// EnvExample lists every environment variable LoadEnv reads, with an
// example value
func EnvExample() []string {
	var examples []string
	generateEnvExamples(reflect.TypeOf(Deskgate{}), EnvPrefix, &examples)
	return examples
}

// generateEnvExamples recursively generates example environment variables
func generateEnvExamples(t reflect.Type, prefix string, examples *[]string) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		envKey, ok := envName(field, prefix)
		if !ok {
			continue
		}

		if field.Type == durationType {
			*examples = append(*examples, envKey+"=15m")
			continue
		}

		switch field.Type.Kind() {
		case reflect.String:
			*examples = append(*examples, envKey+"=value")
		case reflect.Int, reflect.Int64:
			*examples = append(*examples, envKey+"=123")
		case reflect.Float64:
			*examples = append(*examples, envKey+"=0.5")
		case reflect.Bool:
			*examples = append(*examples, envKey+"=true")
		case reflect.Slice:
			if field.Type.Elem().Kind() == reflect.String {
				*examples = append(*examples, envKey+"=value1,value2")
			}
		case reflect.Struct:
			generateEnvExamples(field.Type, envKey, examples)
		case reflect.Ptr:
			if field.Type.Elem().Kind() == reflect.Struct {
				generateEnvExamples(field.Type.Elem(), envKey, examples)
			}
		}
	}
}
