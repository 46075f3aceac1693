package account

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/tsongo/darasa/core"
)

var (
	// password policy
	pwdMaxSim        = .7
	pwdHandleSimTag  = "pwdtoosim"
	pwdHandleSimText = "password cannot be similar to the handle"
)

func init() {
	core.Validate.RegisterStructValidation(accountStructValidation, NewAccount{})
	core.RegisterCustomTranslation(core.Validate, core.Translator, pwdHandleSimTag, pwdHandleSimText)
}

// accountStructValidation does struct level validation on NewAccount.
func accountStructValidation(sl validator.StructLevel) {
	if na, ok := sl.Current().Interface().(NewAccount); ok {
		if similarity(na.Password, na.Handle) >= pwdMaxSim {
			sl.ReportError(na.Password, "password", "Password", pwdHandleSimTag, "")
		}
	}
}

func similarity(pwd, handle string) float64 {
	if handle == "" {
		return 0
	}
	return difflib.NewMatcher(
		strings.Split(strings.ToLower(pwd), ""),
		strings.Split(strings.ToLower(handle), ""),
	).QuickRatio()
}
