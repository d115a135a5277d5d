package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/ecyouth/portal/internal/moderation"
	"github.com/ecyouth/portal/internal/services"
	"github.com/gin-gonic/gin"
)

var (
	chatClient   *services.ChatClient
	riskAssessor moderation.RiskAssessor
)

// InitAIServices wires the optional completion client and the fraud assessor.
// Called from main after the environment is loaded; without an API key both
// chat endpoints fall back to canned guidance and fraud checks use the local
// rules.
func InitAIServices() {
	chatClient = services.NewChatClientFromEnv()
	riskAssessor = moderation.NewAssessor(chatClient)

	if chatClient == nil {
		log.Println("AI services not configured, using rule-based fallbacks")
	}
}

type ChatRequest struct {
	Message string                 `json:"message" binding:"required"`
	History []services.ChatMessage `json:"history"`
}

const careerSystemPrompt = "You are a friendly career guidance assistant for South African youth. " +
	"You help with bursaries, learnerships, CV writing, interview preparation and starting a business. " +
	"Keep answers practical, encouraging and specific to the South African context " +
	"(NSFAS, SETA learnerships, NYDA and SEDA support). Keep responses under 300 words."

const healthSystemPrompt = "You are a supportive health information assistant for South African youth. " +
	"You provide general information about clinic services, mental health support, sexual and " +
	"reproductive health, HIV and TB services, and substance abuse help. You are not a doctor: " +
	"always advise seeing a healthcare professional for diagnosis or treatment, and point to free " +
	"public services (local clinics, SADAG 0800 567 567, the 24hr substance abuse line 0800 12 13 14). " +
	"For emergencies always direct the user to call 10177 or 112. Keep responses under 300 words."

// CareerChat proxies the conversation to the completion service, with a
// keyword-matched canned reply when the service is missing or down.
func CareerChat(ctx *gin.Context) {
	var req ChatRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	if chatClient != nil {
		reply, err := chatClient.Complete(ctx.Request.Context(), careerSystemPrompt, req.History, req.Message, 0.7)
		if err == nil {
			ctx.JSON(http.StatusOK, gin.H{
				"reply":    reply,
				"fallback": false,
				"model":    chatClient.Model(),
			})
			return
		}
		log.Printf("Career chat completion failed, using canned reply: %v", err)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"reply":    cannedCareerReply(req.Message),
		"fallback": true,
	})
}

// HealthChat is the medical counterpart of CareerChat. Replies always carry
// the see-a-professional disclaimer, canned or not.
func HealthChat(ctx *gin.Context) {
	var req ChatRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	if chatClient != nil {
		reply, err := chatClient.Complete(ctx.Request.Context(), healthSystemPrompt, req.History, req.Message, 0.5)
		if err == nil {
			ctx.JSON(http.StatusOK, gin.H{
				"reply":    reply,
				"fallback": false,
				"model":    chatClient.Model(),
			})
			return
		}
		log.Printf("Health chat completion failed, using canned reply: %v", err)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"reply":    cannedHealthReply(req.Message),
		"fallback": true,
	})
}

// cannedReply pairs a keyword group with a fixed response; groups are checked
// in order and the first match wins.
type cannedReply struct {
	keywords []string
	reply    string
}

var careerReplies = []cannedReply{
	{
		keywords: []string{"bursary", "bursaries", "scholarship", "nsfas"},
		reply: "For bursaries, start with NSFAS (www.nsfas.org.za) if you plan to study at a public " +
			"university or TVET college - applications usually open around September. Also check the " +
			"bursaries section of this portal, and look at company bursaries (Sasol, Eskom, banks) in " +
			"your field. You will typically need your ID, latest results and proof of household income.",
	},
	{
		keywords: []string{"cv", "resume", "curriculum"},
		reply: "Keep your CV to two pages: contact details, a short profile, education, any work or " +
			"volunteer experience, and two references. Tailor it to each application and lead with " +
			"your most relevant skills. If you have no work experience yet, include school " +
			"leadership roles, community work and projects - they all count.",
	},
	{
		keywords: []string{"interview"},
		reply: "Prepare for interviews by researching the organisation, re-reading the job advert and " +
			"practising answers to common questions (tell me about yourself, strengths and " +
			"weaknesses, why this role). Arrive early, dress neatly, and bring copies of your CV and " +
			"certified documents. Afterwards, a short thank-you message keeps you memorable.",
	},
	{
		keywords: []string{"learnership", "apprentice", "internship"},
		reply: "Learnerships combine paid work with an accredited qualification, usually over 12 " +
			"months. Look on the portal's learnerships section, SETA websites for your industry, and " +
			"company career pages. You generally need matric (or Grade 10-11 for some trades), a " +
			"South African ID and to be between 18 and 35.",
	},
	{
		keywords: []string{"business", "entrepreneur", "startup", "funding"},
		reply: "For starting a business, NYDA (www.nyda.gov.za) offers grants and mentorship for " +
			"youth-owned businesses, and SEDA helps with business plans and registration. Register " +
			"your business with CIPC, open a separate bank account, and start small while you test " +
			"your idea. The portal's business section lists current grant programmes.",
	},
}

const careerMenuReply = "I can help you with:\n" +
	"- Bursaries and NSFAS funding\n" +
	"- Writing or improving your CV\n" +
	"- Interview preparation\n" +
	"- Learnerships and internships\n" +
	"- Starting a business and youth funding\n" +
	"What would you like to know more about?"

var healthReplies = []cannedReply{
	{
		keywords: []string{"emergency", "suicide", "urgent", "dying"},
		reply: "If this is an emergency, call 10177 or 112 right now. If you are having thoughts of " +
			"suicide, the SADAG Suicide Crisis Line is available 24 hours on 0800 567 567 - you do " +
			"not have to face this alone, and calling is free.",
	},
	{
		keywords: []string{"mental", "depress", "anxiety", "stress"},
		reply: "Feeling low, anxious or overwhelmed is common and help is available. SADAG offers free " +
			"telephonic counselling on 0800 567 567 (24 hours). Your local clinic can also refer you " +
			"to a counsellor at no cost. Talking to someone you trust is a good first step - and if " +
			"the feelings persist, please see a healthcare professional.",
	},
	{
		keywords: []string{"hiv", "aids", "tb", "tuberculosis"},
		reply: "HIV testing, counselling and treatment are free at all public clinics, and so is TB " +
			"screening and treatment. Knowing your status early makes treatment much more effective. " +
			"Everything is confidential. Visit your nearest clinic, or call the AIDS Helpline on " +
			"0800 012 322 for advice.",
	},
	{
		keywords: []string{"pregnan", "contracep", "family planning"},
		reply: "Free contraception, pregnancy testing and antenatal care are available at public " +
			"clinics, no appointment needed at most. If you think you might be pregnant, go early - " +
			"antenatal care from the first weeks protects both you and the baby. Clinic services " +
			"for under-18s are confidential.",
	},
	{
		keywords: []string{"sti", "std", "infection"},
		reply: "STI testing and treatment are free and confidential at public clinics. Many STIs have " +
			"no symptoms, so testing is the only way to know. Go to your nearest clinic if you " +
			"notice anything unusual or a partner has tested positive - most STIs are easily " +
			"treated, and early treatment prevents complications.",
	},
	{
		keywords: []string{"drug", "alcohol", "substance", "addiction"},
		reply: "If drugs or alcohol are affecting you or someone close to you, the 24hr Substance " +
			"Abuse Helpline on 0800 12 13 14 offers free, confidential support and can refer you to " +
			"treatment services. Local clinics can also help with referrals. Asking for help is a " +
			"sign of strength, not weakness.",
	},
	{
		keywords: []string{"vaccine", "vaccin", "immuni"},
		reply: "Routine vaccinations are free at public clinics - bring your clinic card if you have " +
			"one. If you are unsure which vaccines you have had or missed, clinic staff can check " +
			"and catch you up. Flu vaccines are recommended yearly for anyone with asthma, diabetes " +
			"or other chronic conditions.",
	},
	{
		keywords: []string{"clinic", "hospital", "doctor"},
		reply: "Public clinics offer free primary healthcare: consultations, chronic medication, " +
			"testing, family planning and mental health referrals. Take your ID or clinic card and " +
			"expect queues early in the morning. For after-hours problems, community health centres " +
			"and hospital casualty departments stay open.",
	},
}

const healthMenuReply = "I can share general health information about:\n" +
	"- Mental health support and counselling\n" +
	"- HIV and TB testing and treatment\n" +
	"- Pregnancy and family planning\n" +
	"- STI testing\n" +
	"- Substance abuse support\n" +
	"- Vaccinations and clinic services\n" +
	"Remember, I am not a doctor - for any diagnosis or treatment please visit your nearest " +
	"clinic. In an emergency call 10177 or 112."

func cannedCareerReply(message string) string {
	return matchCanned(message, careerReplies, careerMenuReply)
}

func cannedHealthReply(message string) string {
	return matchCanned(message, healthReplies, healthMenuReply)
}

func matchCanned(message string, replies []cannedReply, fallback string) string {
	messageLower := strings.ToLower(message)

	for _, r := range replies {
		for _, keyword := range r.keywords {
			if strings.Contains(messageLower, keyword) {
				return r.reply
			}
		}
	}

	return fallback
}
