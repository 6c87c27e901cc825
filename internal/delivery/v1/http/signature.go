package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
)

// Заголовок подписи встречается в двух вариантах регистра в зависимости от
// прокси по пути доставки.
var signatureHeaders = []string{
	"X-Shopify-Hmac-Sha256",
	"X-Shopify-Hmac-SHA256",
}

func signatureFromRequest(r *http.Request) string {
	for _, h := range signatureHeaders {
		if v := r.Header.Get(h); v != "" {
			return v
		}
	}
	return ""
}

// verifySignature проверяет base64(HMAC-SHA256(body)) против каждого из
// секретов. Сравнение только константное по времени; совпадение с любым
// секретом принимается, что даёт бесшовную ротацию. Возвращает индекс
// совпавшего секрета: ненулевой индекс в логах сигнализирует о том, что
// магазин ещё подписывает старым секретом.
func verifySignature(body []byte, signature string, secrets []string) (int, bool) {
	if signature == "" || len(secrets) == 0 {
		return -1, false
	}

	for i, secret := range secrets {
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(body)
		expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

		if hmac.Equal([]byte(expected), []byte(signature)) {
			return i, true
		}
	}

	return -1, false
}
