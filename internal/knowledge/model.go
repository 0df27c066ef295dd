package knowledge

// DefaultModels is the ordered fallback list. A failed call moves to
// the next model; total failure is reported only after the whole list
// is exhausted.
var DefaultModels = []string{
	"llama-3.1-sonar-small-128k-chat",
	"llama-3.1-sonar-large-128k-chat",
	"llama-3.1-sonar-small-128k-online",
}

// Message roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the chat completions request body.
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float32   `json:"temperature,omitempty"`
}

// chatResponse is the chat completions response body.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// systemPrompts instruct the model per response language.
var systemPrompts = map[string]string{
	"english": "You are a knowledgeable assistant specializing in Hindu Dharma, Vedic traditions, rituals, festivals, scriptures and sampradayas. Answer accurately and respectfully, citing traditional sources where relevant. Respond in English.",
	"hindi":   "आप हिंदू धर्म, वैदिक परंपराओं, अनुष्ठानों, त्योहारों, शास्त्रों और संप्रदायों के विशेषज्ञ सहायक हैं। सटीक और सम्मानपूर्वक उत्तर दें। हिंदी में उत्तर दें।",
	"telugu":  "మీరు హిందూ ధర్మం, వైదిక సంప్రదాయాలు, పండుగలు మరియు శాస్త్రాలలో నిపుణులైన సహాయకులు. ఖచ్చితంగా మరియు గౌరవంగా సమాధానం ఇవ్వండి. తెలుగులో సమాధానం ఇవ్వండి.",
	"kannada": "ನೀವು ಹಿಂದೂ ಧರ್ಮ, ವೈದಿಕ ಸಂಪ್ರದಾಯಗಳು, ಹಬ್ಬಗಳು ಮತ್ತು ಶಾಸ್ತ್ರಗಳ ಪರಿಣತ ಸಹಾಯಕರು. ನಿಖರವಾಗಿ ಮತ್ತು ಗೌರವದಿಂದ ಉತ್ತರಿಸಿ. ಕನ್ನಡದಲ್ಲಿ ಉತ್ತರಿಸಿ.",
}

// systemPromptFor picks the instruction for a language, defaulting to
// the English prompt with a language hint appended.
func systemPromptFor(language string) string {
	if prompt, ok := systemPrompts[language]; ok {
		return prompt
	}
	return systemPrompts["english"] + " If possible, respond in " + language + "."
}
