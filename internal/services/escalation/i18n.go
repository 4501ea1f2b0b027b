package escalation

// Strings holds the localized customer and operator facing text.
type Strings struct {
	NotificationTitle string
	ClientLabel       string
	AssistRequestText string
	HistoryTitle      string
	// UserResponse is the default acknowledgement for a human_request
	// escalation.
	UserResponse string
	// FrustrationDetected is the acknowledgement for a frustration
	// escalation.
	FrustrationDetected string
	// MediaRedirectTitle replaces NotificationTitle on media escalations.
	MediaRedirectTitle string
	// MediaRedirectUserResponse is the acknowledgement for a
	// media_redirect escalation.
	MediaRedirectUserResponse string
}

var i18n = map[string]Strings{
	"en": {
		NotificationTitle:         "🚨 *Human Assistance Required* 🚨",
		ClientLabel:               "Client:",
		AssistRequestText:         "To assist this client's request, go to",
		HistoryTitle:              "*Recent conversation history:*",
		UserResponse:              "Your request has been sent to our team. Someone will contact you shortly via WhatsApp.",
		FrustrationDetected:       "I apologize for any inconvenience. It seems you're having some difficulty with our automated system. A member of our staff will contact you shortly to assist you personally.",
		MediaRedirectTitle:        "📸 *Media Content Received* 📸",
		MediaRedirectUserResponse: "I cannot process media files (images, videos, documents, audios) at the moment. I'm connecting you with a staff member who will review your content and assist you shortly. Please wait to be attended.",
	},
	"es": {
		NotificationTitle:         "🚨 *Se Requiere Asistencia Humana* 🚨",
		ClientLabel:               "Cliente:",
		AssistRequestText:         "Para atender la solicitud de este cliente, dirigirse a",
		HistoryTitle:              "*Historial de conversacion reciente:*",
		UserResponse:              "Tu solicitud ha sido enviada a nuestro equipo. Alguien se pondrá en contacto contigo en breve a través de WhatsApp.",
		FrustrationDetected:       "Disculpe las molestias. Parece que está teniendo algunas complicaciones con nuestro sistema automatizado. Pronto un miembro de nuestro personal se comunicará con usted para asistirle personalmente.",
		MediaRedirectTitle:        "📸 *Contenido Multimedia Recibido* 📸",
		MediaRedirectUserResponse: "No puedo procesar archivos multimedia (imágenes, videos, documentos, audios) en este momento. Te estoy conectando con un miembro del personal que revisará tu contenido y te asistirá en breve. Por favor espera a ser atendido.",
	},
}

// Localize returns the string table for a language code, falling back to
// English for anything unsupported.
func Localize(language string) Strings {
	if t, ok := i18n[language]; ok {
		return t
	}
	return i18n["en"]
}
