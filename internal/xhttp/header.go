package xhttp

import "net/http"

const ContentType = "Content-Type"

func SetHeaderContentTypeTextHTML(w http.ResponseWriter) {
	const textHTML = "text/html; charset=utf-8"
	w.Header().Set(ContentType, textHTML)
}
