package inference

// LLM prompt templates: data only, no logic.

// sentimentSystem frames the backend as a binary sentiment classifier.
const sentimentSystem = `You are a sentiment classifier. You label English text as POSITIVE or NEGATIVE.`

// sentimentPrompt asks for a label with a confidence score.
// Args: text.
const sentimentPrompt = `Classify the sentiment of the text below.

Respond with valid JSON only (no markdown, no ` + "`" + `json` + "`" + ` block):
{"label": "POSITIVE" or "NEGATIVE", "score": confidence between 0 and 1}

Text:
%s`

// generationSystem asks for a plain continuation.
const generationSystem = `You are a text generation model. You continue the given text in the same language, tone and style.`

// generationPrompt. Args: prompt text.
const generationPrompt = `Continue the following text. Output ONLY the continuation, without repeating the text and without commentary.

%s`

// qaSystem frames the backend as an extractive question answering model.
const qaSystem = `You are an extractive question answering model. Answers are short spans copied verbatim from the context.`

// qaPrompt. Args: question, context.
const qaPrompt = `Answer the question using ONLY a span copied from the context.

Respond with valid JSON only (no markdown, no ` + "`" + `json` + "`" + ` block):
{"answer": "the exact span from the context", "score": confidence between 0 and 1}

If the context does not contain the answer, use an empty answer and a score of 0.

Question: %s

Context:
%s`
