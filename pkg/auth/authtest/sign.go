// Package authtest builds signed Telegram init data for tests.
package authtest

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	initdata "github.com/telegram-mini-apps/init-data-golang"
)

// InitData returns a query string for a user signed with botToken the way
// Telegram signs Mini App launch parameters. A zero userID leaves the user
// field out.
func InitData(botToken string, userID int64, username string, authDate time.Time) string {
	payload := map[string]string{
		"query_id": "AAHdF6IQAAAAAN0XohDhrOrc",
	}
	if userID != 0 {
		payload["user"] = fmt.Sprintf(`{"id":%d,"first_name":"Test","username":%q}`, userID, username)
	}

	values := url.Values{}
	for k, v := range payload {
		values.Set(k, v)
	}
	values.Set("auth_date", strconv.FormatInt(authDate.Unix(), 10))
	values.Set("hash", initdata.Sign(payload, botToken, authDate))

	return values.Encode()
}
