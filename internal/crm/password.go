package crm

import "crypto/rand"

// passwordAlphabet mixes cases, digits and symbols so generated passwords
// clear common CRM complexity rules.
const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*"

const passwordLength = 24

// GeneratePassword produces a random account password. The value is never
// logged; diagnostics only ever see a masked prefix.
func GeneratePassword() string {
	b := make([]byte, passwordLength)
	if _, err := rand.Read(b); err != nil {
		panic("crm: crypto/rand unavailable: " + err.Error())
	}
	for i := range b {
		b[i] = passwordAlphabet[int(b[i])%len(passwordAlphabet)]
	}
	return string(b)
}
