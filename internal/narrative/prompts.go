package narrative

const factsSystem = "Return ONLY valid JSON."

// factsPromptTemplate takes the indented monthly summary JSON.
const factsPromptTemplate = `You are a financial data analyst.

TASK:
Convert the data into STRICT month-wise facts.

RULES:
- DO NOT give advice
- DO NOT summarize
- DO NOT use generic language
- Every month MUST be separate

Return ONLY valid JSON in this format:

{
  "months": [
    {
      "month": "Jan",
      "income": number,
      "expenses": number,
      "savings": number,
      "observation": "1 factual sentence"
    }
  ],
  "overall_patterns": [
    "pattern 1",
    "pattern 2"
  ],
  "risk_flags": [
    "risk 1",
    "risk 2"
  ]
}

DATA:
%s
`

const lifeEventSystem = "You are a financial intelligence AI. Always return ONLY valid JSON."

// lifeEventPromptTemplate takes the analysis text block.
const lifeEventPromptTemplate = `Detect the MOST LIKELY life event.

Allowed values:
- jobChange
- wedding
- newBaby
- homePurchase
- none

Return STRICT JSON ONLY in this format:
{
  "eventName": "<value>",
  "reasoning": "<short explanation>"
}

DATA:
%s
`

const advisorySystem = "Return ONLY valid JSON."

// advisoryPromptTemplate takes the indented facts JSON.
const advisoryPromptTemplate = `You are a senior Indian personal finance advisor.

These facts are VERIFIED and FINAL.
You must explain EACH MONTH separately.

FACTS:
%s

INSTRUCTIONS:
- Write month-by-month explanation (Jan, Feb, Mar...)
- Explain WHY income or expenses changed
- Call out dangerous months clearly
- Be blunt and practical
- NO generic advice
- NO repetition
- DO NOT include navigation instructions
- DO NOT include UI text (buttons, links, arrows)
- DO NOT say things like "analyze another statement" or "go back"

Return JSON in this format ONLY:

{
  "summary": "2-3 line blunt financial health summary",
  "sections": [
    {
      "title": "January Analysis",
      "content": "Detailed explanation"
    }
  ],
  "final_advice": [
    "specific action 1",
    "specific action 2"
  ]
}
`

const sipSystem = "You are a conservative financial assistant."

// sipPromptTemplate takes income, expenses, risk, life event and SIP amount.
const sipPromptTemplate = `Explain why this SIP was recommended.

Rules:
- No financial guarantees
- No future return promises
- Explain using user data only
- Max 4 sentences

Inputs:
Monthly income: %s
Monthly expenses: %s
Risk preference: %s%%
Detected life event: %s
Recommended SIP: %d
`

const chatSystem = "You are a cautious financial explainer."

// OutOfScopeAnswer is what the chat prompt tells the model to say for
// questions the report cannot answer.
const OutOfScopeAnswer = "I can only answer questions based on your financial report."

// chatPromptTemplate takes the indented report JSON and the question.
const chatPromptTemplate = `You are a financial report explanation assistant.

STRICT RULES:
- Answer ONLY using the report below
- DO NOT give generic finance advice
- DO NOT mention mutual funds, stocks, returns
- If question is outside the report, say:
  "` + OutOfScopeAnswer + `"

REPORT:
%s

USER QUESTION:
%s

Answer in 2-4 clear sentences.
`
