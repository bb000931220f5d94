package accounts

type Account struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Domain    string `json:"domain,omitempty"`
	Email     string `json:"-"`
	Suspended bool   `json:"suspended"`
	Silenced  bool   `json:"silenced"`
}

// IsRemote reports whether the account lives on another instance.
func (a Account) IsRemote() bool {
	return a.Domain != ""
}
