package model

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/minisk/pkg/errors"
)

// ParamFloat は SetParams に渡された値を float64 に変換する。
// JSON / TOML からデコードされた float64, int, int64 と数値文字列を受け付ける。
func ParamFloat(name string, value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, errors.NewValidationError(name, "must be a number", value)
		}
		return f, nil
	default:
		return 0, errors.NewValidationError(name, "must be a number", value)
	}
}

// ParamString は SetParams に渡された値を string に変換する
func ParamString(name string, value interface{}) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", errors.NewValidationError(name, "must be a string", value)
	}
	return s, nil
}

// UnknownParam は推定器が受け付けないパラメータ名のエラーを返す
func UnknownParam(estimator, name string, valid []string) error {
	return errors.NewValueError(estimator+".SetParams",
		fmt.Sprintf("invalid parameter %q, valid parameters are [%s]", name, strings.Join(valid, ", ")))
}

// FormatRepr は "LinReg(shrink=0)" 形式の文字列を返す。パラメータ名でソートする。
func FormatRepr(name string, params map[string]interface{}) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if strings.Contains(k, "__") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + formatValue(params[k])
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatFloat(x, 'f', -1, 64)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}
