// Package validator checks caller input before it reaches the network.
//
// Struct tags list rules separated by ";", with parameters after ":":
//
//	type RegisterInput struct {
//		Email string   `json:"email" validate:"required;email"`
//		Name  string   `json:"name" validate:"required;max:100"`
//		Roles []string `json:"roles" validate:"in:ROLE_USER,ROLE_ADMIN"`
//	}
//
//	if err := validator.ValidateStruct(&in); err != nil {
//		for _, fe := range validator.ExtractValidationErrors(err) {
//			fmt.Println(fe.Field, fe.Message)
//		}
//	}
//
// Failures are reported under the field's json name. Format rules (email,
// phone, in) ignore empty values, so optional fields only need "required" when
// they must be present. Built-in rules: required, min, max, email, phone, in.
// RegisterValidator adds more.
//
// The same rules are available programmatically through Apply:
//
//	err := validator.Apply(
//		validator.Required("name", in.Name),
//		validator.MaxLenString("name", in.Name, 255),
//	)
package validator
