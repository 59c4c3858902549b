// Пакет для валидации данных запросов Forge. Содержит валидаторы для имен
// пространств, команд, пользователей и slug. Использует библиотеку
// go-playground/validator для выполнения проверок.
//
// Основные возможности:
//   - Валидация полей запросов с использованием предопределенных валидаторов.
//   - Регулярные выражения для проверки формата данных.
package forge

import (
	"regexp"
	"unicode/utf8"

	"github.com/go-playground/validator"
)

type RequestValidator struct {
	validator *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()

	err := v.RegisterValidation("workspaceName", workspaceNameValidator)
	if err != nil {
		return nil
	}

	err = v.RegisterValidation("teamName", teamNameValidator)
	if err != nil {
		return nil
	}

	err = v.RegisterValidation("slug", slugValidator)
	if err != nil {
		return nil
	}

	err = v.RegisterValidation("fullName", userFullNameValidator)
	if err != nil {
		return nil
	}

	return &RequestValidator{v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	if err := rv.validator.Struct(i); err != nil {
		_, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil
		}
		return err
	}
	return nil
}

func workspaceNameValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	lenStr := utf8.RuneCountInString(value)
	if !isValidNameChars(value) {
		return false
	}
	return lenStr >= 3 && lenStr <= 100
}

func teamNameValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	lenStr := utf8.RuneCountInString(value)
	if !isValidNameChars(value) {
		return false
	}
	return lenStr >= 1 && lenStr <= 100
}

func slugValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	lenStr := utf8.RuneCountInString(value)
	if !isValidLatinLowerDigitHyphen(value) {
		return false
	}
	return lenStr >= 3 && lenStr <= 50
}

func userFullNameValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	lenStr := utf8.RuneCountInString(value)
	if !isValidFullNameChars(value) {
		return false
	}
	return lenStr >= 1 && lenStr <= 100
}

// Validate
func isValidNameChars(str string) bool {
	pt := `^[A-Za-zÀ-ÿА-Яа-яёЁ0-9 ._\/\-&'\(\)\+,:;№]+$`
	re := regexp.MustCompile(pt)
	return re.MatchString(str)
}

func isValidFullNameChars(str string) bool {
	pt := `^[A-Za-zÀ-ÿА-Яа-яёЁ' \-\.]+$`
	re := regexp.MustCompile(pt)
	return re.MatchString(str)
}

func isValidLatinLowerDigitHyphen(str string) bool {
	pt := `^[a-z0-9-]+$`
	re := regexp.MustCompile(pt)
	return re.MatchString(str)
}
