// Package feeders provides configuration feeders for reading data from
// environment variables and YAML/TOML files.
package feeders

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/golobby/cast"
)

// EnvFeeder populates struct fields tagged `env:"NAME"` from environment
// variables. Nested structs are walked recursively.
type EnvFeeder struct{}

// NewEnvFeeder creates a feeder reading unprefixed environment variables.
func NewEnvFeeder() EnvFeeder {
	return EnvFeeder{}
}

func (f EnvFeeder) Feed(structure any) error {
	return feedEnv(structure, "", "")
}

// AffixedEnvFeeder reads environment variables with a prefix and/or suffix,
// e.g. prefix "APP" turns tag `env:"PORT"` into APP_PORT.
type AffixedEnvFeeder struct {
	Prefix string
	Suffix string
}

// NewAffixedEnvFeeder creates a feeder with the given prefix and suffix.
func NewAffixedEnvFeeder(prefix, suffix string) AffixedEnvFeeder {
	return AffixedEnvFeeder{Prefix: prefix, Suffix: suffix}
}

func (f AffixedEnvFeeder) Feed(structure any) error {
	if f.Prefix == "" && f.Suffix == "" {
		return ErrEnvEmptyPrefixAndSuffix
	}
	return feedEnv(structure, strings.ToUpper(f.Prefix), strings.ToUpper(f.Suffix))
}

// FeedKey uses the section key as the variable prefix, so section "database"
// feeds tags from DATABASE_*.
func (f EnvFeeder) FeedKey(key string, structure any) error {
	return feedEnv(structure, strings.ToUpper(key), "")
}

func feedEnv(structure any, prefix, suffix string) error {
	inputType := reflect.TypeOf(structure)
	if inputType == nil || inputType.Kind() != reflect.Ptr || inputType.Elem().Kind() != reflect.Struct {
		return ErrEnvInvalidStructure
	}
	return processStructFields(reflect.ValueOf(structure).Elem(), prefix, suffix)
}

func processStructFields(rv reflect.Value, prefix, suffix string) error {
	for i := 0; i < rv.NumField(); i++ {
		field := rv.Field(i)
		fieldType := rv.Type().Field(i)

		if err := processField(field, &fieldType, prefix, suffix); err != nil {
			return fmt.Errorf("error in field '%s': %w", fieldType.Name, err)
		}
	}
	return nil
}

func processField(field reflect.Value, fieldType *reflect.StructField, prefix, suffix string) error {
	switch field.Kind() {
	case reflect.Struct:
		return processStructFields(field, prefix, suffix)
	case reflect.Pointer:
		if !field.IsZero() && field.Elem().Kind() == reflect.Struct {
			return processStructFields(field.Elem(), prefix, suffix)
		}
	default:
		if envTag, exists := fieldType.Tag.Lookup("env"); exists {
			return setFieldFromEnv(field, envTag, prefix, suffix)
		}
	}
	return nil
}

func setFieldFromEnv(field reflect.Value, envTag, prefix, suffix string) error {
	envName := strings.ToUpper(envTag)
	if prefix != "" {
		envName = prefix + "_" + envName
	}
	if suffix != "" {
		envName = envName + "_" + suffix
	}

	if envValue := os.Getenv(envName); envValue != "" {
		return setFieldValue(field, envValue)
	}
	return nil
}

func setFieldValue(field reflect.Value, strValue string) error {
	convertedValue, err := cast.FromType(strValue, field.Type())
	if err != nil {
		return fmt.Errorf("cannot convert value to type %v: %w", field.Type(), err)
	}

	if !field.CanSet() {
		return ErrEnvFieldNotSettable
	}

	field.Set(reflect.ValueOf(convertedValue))
	return nil
}
