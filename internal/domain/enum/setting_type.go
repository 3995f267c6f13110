package enum

// SettingType is the declared type of a global_settings value
type SettingType string

const (
	SettingTypeNumber  SettingType = "number"
	SettingTypeBoolean SettingType = "boolean"
	SettingTypeString  SettingType = "string"
)

func (t SettingType) Valid() bool {
	switch t {
	case SettingTypeNumber, SettingTypeBoolean, SettingTypeString:
		return true
	}
	return false
}
