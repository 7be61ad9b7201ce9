package cmd

import (
	"fmt"
)

// ValidateExclusiveOptions は排他的なオプション指定を検証する。
// required が true の場合はいずれか1つの指定を必須とする。
func ValidateExclusiveOptions(required, exclusive bool, opts ...bool) error {
	count := 0
	for _, set := range opts {
		if set {
			count++
		}
	}
	if required && count == 0 {
		return fmt.Errorf("⚠️ いずれかのオプションを指定してください")
	}
	if exclusive && count > 1 {
		return fmt.Errorf("⚠️ 同時に指定できるオプションは1つだけです")
	}
	return nil
}
