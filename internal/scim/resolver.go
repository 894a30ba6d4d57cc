package scim

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateTimeLayout is the XSD dateTime form SCIM uses on the wire. The
// date-time resolver reads and writes raw values in this layout only; LDAP
// generalized-time values (e.g. "20260806120000Z") are not converted and
// fail to decode.
const dateTimeLayout = time.RFC3339

// StringResolver resolves attribute values to/from string instances. It is
// stateless and safe for unrestricted concurrent use, per §4.1.
type StringResolver struct{}

func (StringResolver) ToInstance(attr string, value []byte) (string, error) {
	return string(value), nil
}

func (StringResolver) FromInstance(desc *AttributeDescriptor, value string) ([]byte, error) {
	return []byte(value), nil
}

// BooleanResolver resolves attribute values to/from bool instances using the
// same token set LDAP's boolean syntax (RFC 4517 §3.3.3) defines.
type BooleanResolver struct{}

func (BooleanResolver) ToInstance(attr string, value []byte) (bool, error) {
	switch strings.ToUpper(strings.TrimSpace(string(value))) {
	case "TRUE":
		return true, nil
	case "FALSE":
		return false, nil
	default:
		return false, &MalformedValueError{Attribute: attr, Value: string(value)}
	}
}

func (BooleanResolver) FromInstance(desc *AttributeDescriptor, value bool) ([]byte, error) {
	if value {
		return []byte("TRUE"), nil
	}
	return []byte("FALSE"), nil
}

// DateTimeResolver resolves attribute values to/from time.Time instances.
type DateTimeResolver struct{}

func (DateTimeResolver) ToInstance(attr string, value []byte) (time.Time, error) {
	t, err := time.Parse(dateTimeLayout, string(value))
	if err != nil {
		return time.Time{}, &MalformedValueError{Attribute: attr, Value: string(value), Cause: err}
	}
	return t, nil
}

func (DateTimeResolver) FromInstance(desc *AttributeDescriptor, value time.Time) ([]byte, error) {
	return []byte(value.UTC().Format(dateTimeLayout)), nil
}

// BinaryResolver resolves attribute values to/from raw octet strings,
// presented to SCIM callers as base64 text, matching SCIM's wire
// representation for binary attributes.
type BinaryResolver struct{}

func (BinaryResolver) ToInstance(attr string, value []byte) (string, error) {
	return base64.StdEncoding.EncodeToString(value), nil
}

func (BinaryResolver) FromInstance(desc *AttributeDescriptor, value string) ([]byte, error) {
	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, &MalformedValueError{Attribute: desc.Name, Value: value, Cause: err}
	}
	return decoded, nil
}

// IntegerResolver resolves attribute values to/from int64 instances.
type IntegerResolver struct{}

func (IntegerResolver) ToInstance(attr string, value []byte) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(string(value)), 10, 64)
	if err != nil {
		return 0, &MalformedValueError{Attribute: attr, Value: string(value), Cause: err}
	}
	return n, nil
}

func (IntegerResolver) FromInstance(desc *AttributeDescriptor, value int64) ([]byte, error) {
	return []byte(strconv.FormatInt(value, 10)), nil
}

var (
	stringResolver   = StringResolver{}
	booleanResolver  = BooleanResolver{}
	dateTimeResolver = DateTimeResolver{}
	binaryResolver   = BinaryResolver{}
	integerResolver  = IntegerResolver{}
)

// DecodeScalar decodes a single raw LDAP value into its native form per the
// attribute descriptor's data type.
func DecodeScalar(desc *AttributeDescriptor, raw []byte) (any, error) {
	switch desc.DataType {
	case DataTypeString:
		return stringResolver.ToInstance(desc.Name, raw)
	case DataTypeBoolean:
		return booleanResolver.ToInstance(desc.Name, raw)
	case DataTypeDateTime:
		return dateTimeResolver.ToInstance(desc.Name, raw)
	case DataTypeBinary:
		return binaryResolver.ToInstance(desc.Name, raw)
	case DataTypeInteger:
		return integerResolver.ToInstance(desc.Name, raw)
	case DataTypeDecimal:
		return stringResolver.ToInstance(desc.Name, raw)
	default:
		return nil, fmt.Errorf("scim: cannot decode scalar of data type %v", desc.DataType)
	}
}

// EncodeScalar is the inverse of DecodeScalar, used by mappers that build
// LDAP attribute values from native SCIM values.
func EncodeScalar(desc *AttributeDescriptor, value any) ([]byte, error) {
	switch desc.DataType {
	case DataTypeString, DataTypeDecimal:
		s, ok := value.(string)
		if !ok {
			return nil, &MalformedValueError{Attribute: desc.Name, Value: fmt.Sprint(value)}
		}
		return stringResolver.FromInstance(desc, s)
	case DataTypeBoolean:
		b, ok := value.(bool)
		if !ok {
			return nil, &MalformedValueError{Attribute: desc.Name, Value: fmt.Sprint(value)}
		}
		return booleanResolver.FromInstance(desc, b)
	case DataTypeDateTime:
		t, ok := value.(time.Time)
		if !ok {
			return nil, &MalformedValueError{Attribute: desc.Name, Value: fmt.Sprint(value)}
		}
		return dateTimeResolver.FromInstance(desc, t)
	case DataTypeBinary:
		s, ok := value.(string)
		if !ok {
			return nil, &MalformedValueError{Attribute: desc.Name, Value: fmt.Sprint(value)}
		}
		return binaryResolver.FromInstance(desc, s)
	case DataTypeInteger:
		n, ok := value.(int64)
		if !ok {
			return nil, &MalformedValueError{Attribute: desc.Name, Value: fmt.Sprint(value)}
		}
		return integerResolver.FromInstance(desc, n)
	default:
		return nil, fmt.Errorf("scim: cannot encode scalar of data type %v", desc.DataType)
	}
}
