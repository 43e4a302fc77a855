package env

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/coupergateway/authproxy/errors"
)

var OsEnvironMu = sync.Mutex{}
var OsEnviron = os.Environ

func SetTestOsEnviron(f func() []string) {
	OsEnvironMu.Lock()
	defer OsEnvironMu.Unlock()

	OsEnviron = f
}

// Decode sets all fields of the given struct pointer which have an
// env tag matching a non-empty environment variable.
func Decode(conf interface{}) error {
	return DecodeWithPrefix(conf, "")
}

// DecodeWithPrefix is Decode with names like <prefix><TAG>.
func DecodeWithPrefix(conf interface{}, prefix string) error {
	envMap := Map(prefix)
	if len(envMap) == 0 {
		return nil
	}
	return decode(reflect.ValueOf(conf), prefix, envMap)
}

// Map returns all environment variables with the given prefix,
// lower-cased and with the prefix removed.
func Map(prefix string) map[string]string {
	envMap := make(map[string]string)

	OsEnvironMu.Lock()
	envVars := OsEnviron()
	OsEnvironMu.Unlock()

	for _, v := range envVars {
		key, value, found := strings.Cut(v, "=")
		if !found || !strings.HasPrefix(key, prefix) {
			continue
		}
		envMap[strings.ToLower(key[len(prefix):])] = value
	}
	return envMap
}

func decode(val reflect.Value, prefix string, envMap map[string]string) error {
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}

	for i := 0; i < val.NumField(); i++ {
		field := val.Type().Field(i)
		if !field.IsExported() {
			continue
		}

		switch val.Field(i).Kind() {
		case reflect.Ptr:
			continue
		case reflect.Struct:
			if _, isDuration := val.Field(i).Interface().(time.Duration); !isDuration {
				if err := decode(val.Field(i).Addr(), prefix, envMap); err != nil {
					return err
				}
				continue
			}
		default:
		}

		envVal, ok := field.Tag.Lookup("env")
		if !ok || envVal == "-" {
			continue
		}
		envVal = strings.ToLower(strings.Split(envVal, ",")[0])

		mapVal, exist := envMap[envVal]
		if !exist || mapVal == "" {
			continue
		}

		variableName := strings.ToUpper(prefix + envVal)
		invalid := func(kind string) error {
			return errors.Configuration.Messagef("invalid %s value for %q: %s", kind, variableName, mapVal)
		}

		switch val.Field(i).Interface().(type) {
		case bool:
			b, err := strconv.ParseBool(mapVal)
			if err != nil {
				return invalid("boolean")
			}
			val.Field(i).SetBool(b)
		case int:
			intVal, err := strconv.Atoi(mapVal)
			if err != nil {
				return invalid("integer")
			}
			val.Field(i).SetInt(int64(intVal))
		case string:
			val.Field(i).SetString(mapVal)
		case []string:
			slice := strings.Split(mapVal, ",")
			for idx, v := range slice {
				slice[idx] = strings.TrimSpace(v)
			}
			val.Field(i).Set(reflect.ValueOf(slice))
		case time.Duration:
			parsedDuration, err := time.ParseDuration(mapVal)
			if err != nil {
				return invalid("duration")
			}
			val.Field(i).Set(reflect.ValueOf(parsedDuration))
		default:
			return errors.Configuration.Message(
				fmt.Sprintf("env decode: type mapping not implemented: %v", reflect.TypeOf(val.Field(i).Interface())))
		}
	}
	return nil
}
