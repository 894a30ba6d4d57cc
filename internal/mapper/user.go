package mapper

import (
	"github.com/gandhrekunal/scim/internal/directory"
	"github.com/gandhrekunal/scim/internal/scim"
)

// UserMapper is the creator mapper for the "User" resource kind. It covers
// the attribute slice the scenario setup in §8 names: userName, name
// (givenName/familyName/formatted), emails, phoneNumbers, addresses.
type UserMapper struct {
	descriptor *scim.ResourceDescriptor
}

// NewUserMapper builds the core User mapper.
func NewUserMapper() *UserMapper {
	return &UserMapper{descriptor: UserResourceDescriptor()}
}

func (m *UserMapper) ResourceNames() []string { return []string{"User"} }

func (m *UserMapper) SupportsCreate() bool { return true }

func (m *UserMapper) attr(name string) *scim.AttributeDescriptor {
	d, _ := m.descriptor.Attribute(name)
	return d
}

// ToSCIMAttributes translates a directory entry into User attributes,
// producing only the ones present in selection and silently omitting any
// it cannot source from entry (§4.3).
func (m *UserMapper) ToSCIMAttributes(resourceName string, entry *directory.Entry, selection scim.AttributeSelection) ([]*scim.SCIMAttribute, error) {
	if resourceName != "User" || entry == nil {
		return nil, nil
	}

	var attrs []*scim.SCIMAttribute

	if selection.IsRequested("userName") {
		if v := entry.GetValue("uid"); v != nil {
			attrs = append(attrs, &scim.SCIMAttribute{Descriptor: m.attr("userName"), Value: string(v)})
		}
	}

	if selection.IsRequested("name") {
		if attr := m.nameAttribute(entry); attr != nil {
			attrs = append(attrs, attr)
		}
	}

	if selection.IsRequested("emails") {
		if attr := m.emailsAttribute(entry); attr != nil {
			attrs = append(attrs, attr)
		}
	}

	if selection.IsRequested("phoneNumbers") {
		if attr := m.phoneNumbersAttribute(entry); attr != nil {
			attrs = append(attrs, attr)
		}
	}

	if selection.IsRequested("addresses") {
		if attr := m.addressesAttribute(entry); attr != nil {
			attrs = append(attrs, attr)
		}
	}

	return attrs, nil
}

func (m *UserMapper) nameAttribute(entry *directory.Entry) *scim.SCIMAttribute {
	value := map[string]any{}
	if v := entry.GetValue("givenName"); v != nil {
		value["givenName"] = string(v)
	}
	if v := entry.GetValue("sn"); v != nil {
		value["familyName"] = string(v)
	}
	if v := entry.GetValue("cn"); v != nil {
		value["formatted"] = string(v)
	}
	if len(value) == 0 {
		return nil
	}
	return &scim.SCIMAttribute{Descriptor: m.attr("name"), Value: value}
}

func (m *UserMapper) emailsAttribute(entry *directory.Entry) *scim.SCIMAttribute {
	values := entry.GetValues("mail")
	if len(values) == 0 {
		return nil
	}
	elements := make([]scim.MultiValuedElement, 0, len(values))
	for _, v := range values {
		elements = append(elements, scim.MultiValuedElement{"type": "work", "value": string(v)})
	}
	return &scim.SCIMAttribute{Descriptor: m.attr("emails"), Value: elements}
}

func (m *UserMapper) phoneNumbersAttribute(entry *directory.Entry) *scim.SCIMAttribute {
	var elements []scim.MultiValuedElement
	for _, v := range entry.GetValues("telephoneNumber") {
		elements = append(elements, scim.MultiValuedElement{"type": "work", "value": string(v)})
	}
	for _, v := range entry.GetValues("homePhone") {
		elements = append(elements, scim.MultiValuedElement{"type": "home", "value": string(v)})
	}
	if len(elements) == 0 {
		return nil
	}
	return &scim.SCIMAttribute{Descriptor: m.attr("phoneNumbers"), Value: elements}
}

func (m *UserMapper) addressesAttribute(entry *directory.Entry) *scim.SCIMAttribute {
	var elements []scim.MultiValuedElement

	work := scim.MultiValuedElement{}
	if v := entry.GetValue("postalAddress"); v != nil {
		work["formatted"] = string(v)
	}
	if v := entry.GetValue("street"); v != nil {
		work["streetAddress"] = string(v)
	}
	if v := entry.GetValue("l"); v != nil {
		work["locality"] = string(v)
	}
	if v := entry.GetValue("st"); v != nil {
		work["region"] = string(v)
	}
	if v := entry.GetValue("postalCode"); v != nil {
		work["postalCode"] = string(v)
	}
	if len(work) > 0 {
		work["type"] = "work"
		elements = append(elements, work)
	}

	if v := entry.GetValue("homePostalAddress"); v != nil {
		elements = append(elements, scim.MultiValuedElement{"type": "home", "formatted": string(v)})
	}

	if len(elements) == 0 {
		return nil
	}
	return &scim.SCIMAttribute{Descriptor: m.attr("addresses"), Value: elements}
}

// ToLDAPEntry builds the skeleton entry for a new User. The naming
// attribute is "uid", composed with baseDN. cn is derived with a fallback
// chain: the formatted name if supplied, else "given family" if both are
// present, else userName — resolving the scenario setup's apparent
// inconsistency between "userName maps to uid+cn" and S3's expectation
// that cn holds the formatted display name (see DESIGN.md). The emails,
// phoneNumbers and addresses attributes from ToLDAPAttributes are folded
// into the skeleton as well.
func (m *UserMapper) ToLDAPEntry(resource *scim.SCIMResource, baseDN string) (*directory.Entry, error) {
	userName := resource.StringValue("userName")
	if userName == "" {
		return nil, &scim.IncompleteResourceError{ResourceName: "User", Attribute: "userName"}
	}

	dn := directory.BuildDN("uid", userName, baseDN)
	entry := directory.NewEntry(dn)
	entry.SetValues("uid", []byte(userName))
	entry.SetValues("cn", []byte(m.resolveCN(resource, userName)))

	if name, ok := resource.ComplexValue("name"); ok {
		if given, _ := name["givenName"].(string); given != "" {
			entry.SetValues("givenName", []byte(given))
		}
		if family, _ := name["familyName"].(string); family != "" {
			entry.SetValues("sn", []byte(family))
		}
	}

	extra, err := m.ToLDAPAttributes(resource)
	if err != nil {
		return nil, err
	}
	for _, a := range extra {
		entry.AddValues(a.Name, a.Values...)
	}

	return entry, nil
}

func (m *UserMapper) resolveCN(resource *scim.SCIMResource, userName string) string {
	name, ok := resource.ComplexValue("name")
	if !ok {
		return userName
	}
	if formatted, _ := name["formatted"].(string); formatted != "" {
		return formatted
	}
	given, _ := name["givenName"].(string)
	family, _ := name["familyName"].(string)
	if given != "" && family != "" {
		return given + " " + family
	}
	return userName
}

// ToLDAPAttributes returns the LDAP attributes for emails, phoneNumbers and
// addresses: the ones ToLDAPEntry does not derive from userName and name.
// The backend calls ToLDAPAttributes only on non-creator mappers, so
// ToLDAPEntry calls it itself and adds the result to the skeleton.
func (m *UserMapper) ToLDAPAttributes(resource *scim.SCIMResource) ([]directory.Attribute, error) {
	var attrs []directory.Attribute

	for _, el := range resource.MultiValue("emails") {
		if v, _ := el["value"].(string); v != "" {
			attrs = append(attrs, directory.Attribute{Name: "mail", Values: stringsToValues(v)})
		}
	}

	for _, el := range resource.MultiValue("phoneNumbers") {
		v, _ := el["value"].(string)
		if v == "" {
			continue
		}
		switch el.Type() {
		case "work":
			attrs = append(attrs, directory.Attribute{Name: "telephoneNumber", Values: stringsToValues(v)})
		case "home":
			attrs = append(attrs, directory.Attribute{Name: "homePhone", Values: stringsToValues(v)})
		}
	}

	for _, el := range resource.MultiValue("addresses") {
		switch el.Type() {
		case "work":
			attrs = append(attrs, addressAttributes(el, "postalAddress", "street", "l", "st", "postalCode")...)
		case "home":
			if formatted, _ := el["formatted"].(string); formatted != "" {
				attrs = append(attrs, directory.Attribute{Name: "homePostalAddress", Values: stringsToValues(formatted)})
			}
		}
	}

	return attrs, nil
}

func addressAttributes(el scim.MultiValuedElement, formattedName, streetName, localityName, regionName, postalCodeName string) []directory.Attribute {
	var attrs []directory.Attribute
	if v, _ := el["formatted"].(string); v != "" {
		attrs = append(attrs, directory.Attribute{Name: formattedName, Values: stringsToValues(v)})
	}
	if v, _ := el["streetAddress"].(string); v != "" {
		attrs = append(attrs, directory.Attribute{Name: streetName, Values: stringsToValues(v)})
	}
	if v, _ := el["locality"].(string); v != "" {
		attrs = append(attrs, directory.Attribute{Name: localityName, Values: stringsToValues(v)})
	}
	if v, _ := el["region"].(string); v != "" {
		attrs = append(attrs, directory.Attribute{Name: regionName, Values: stringsToValues(v)})
	}
	if v, _ := el["postalCode"].(string); v != "" {
		attrs = append(attrs, directory.Attribute{Name: postalCodeName, Values: stringsToValues(v)})
	}
	return attrs
}

// ToLDAPModifications computes the diff for this mapper's attribute slice:
// givenName/sn from name (only when name is present in the desired
// resource), mail from emails, telephoneNumber/homePhone from phoneNumbers,
// and the address attributes from addresses. uid and cn are never modified. Each (type, LDAP attribute) pair for a multi-valued
// attribute is diffed independently, per §4.3's tie-break rule.
func (m *UserMapper) ToLDAPModifications(currentEntry *directory.Entry, desiredResource *scim.SCIMResource) ([]directory.Modification, error) {
	var mods []directory.Modification

	if name, ok := desiredResource.ComplexValue("name"); ok {
		given, _ := name["givenName"].(string)
		family, _ := name["familyName"].(string)
		if mod := diffValues("givenName", currentEntry.GetValues("givenName"), stringsToValues(given)); mod != nil {
			mods = append(mods, *mod)
		}
		if mod := diffValues("sn", currentEntry.GetValues("sn"), stringsToValues(family)); mod != nil {
			mods = append(mods, *mod)
		}
	}

	desiredMail := make([][]byte, 0)
	for _, el := range desiredResource.MultiValue("emails") {
		if v, _ := el["value"].(string); v != "" {
			desiredMail = append(desiredMail, []byte(v))
		}
	}
	if mod := diffValues("mail", currentEntry.GetValues("mail"), desiredMail); mod != nil {
		mods = append(mods, *mod)
	}

	mods = append(mods, m.diffPhoneNumbers(currentEntry, desiredResource)...)
	mods = append(mods, m.diffAddresses(currentEntry, desiredResource)...)

	return mods, nil
}

func (m *UserMapper) diffPhoneNumbers(currentEntry *directory.Entry, desiredResource *scim.SCIMResource) []directory.Modification {
	var work, home [][]byte
	for _, el := range desiredResource.MultiValue("phoneNumbers") {
		v, _ := el["value"].(string)
		if v == "" {
			continue
		}
		switch el.Type() {
		case "work":
			work = append(work, []byte(v))
		case "home":
			home = append(home, []byte(v))
		}
	}

	var mods []directory.Modification
	if mod := diffValues("telephoneNumber", currentEntry.GetValues("telephoneNumber"), work); mod != nil {
		mods = append(mods, *mod)
	}
	if mod := diffValues("homePhone", currentEntry.GetValues("homePhone"), home); mod != nil {
		mods = append(mods, *mod)
	}
	return mods
}

func (m *UserMapper) diffAddresses(currentEntry *directory.Entry, desiredResource *scim.SCIMResource) []directory.Modification {
	var work, home scim.MultiValuedElement
	for _, el := range desiredResource.MultiValue("addresses") {
		switch el.Type() {
		case "work":
			work = el
		case "home":
			home = el
		}
	}

	field := func(el scim.MultiValuedElement, key string) string {
		if el == nil {
			return ""
		}
		v, _ := el[key].(string)
		return v
	}

	var mods []directory.Modification
	workFields := map[string]string{
		"postalAddress": "formatted",
		"street":        "streetAddress",
		"l":             "locality",
		"st":            "region",
		"postalCode":    "postalCode",
	}
	for ldapName, scimKey := range workFields {
		if mod := diffValues(ldapName, currentEntry.GetValues(ldapName), stringsToValues(field(work, scimKey))); mod != nil {
			mods = append(mods, *mod)
		}
	}
	if mod := diffValues("homePostalAddress", currentEntry.GetValues("homePostalAddress"), stringsToValues(field(home, "formatted"))); mod != nil {
		mods = append(mods, *mod)
	}
	return mods
}
