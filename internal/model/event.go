package model

// AgentEvent 一次 Agent 运行中的单个事件，按产生顺序进入 raw_response.events。
// 工具返回的 JSON 原样放进 function_response.response，前端从这里提取商品记录。
type AgentEvent struct {
	ID              string        `json:"id"`
	Author          string        `json:"author"`
	Content         *EventContent `json:"content,omitempty"`
	IsFinalResponse bool          `json:"is_final_response"`
	Timestamp       int64         `json:"timestamp"`
}

type EventContent struct {
	Role  string      `json:"role"`
	Parts []EventPart `json:"parts"`
}

type EventPart struct {
	Text             string            `json:"text,omitempty"`
	FunctionCall     *FunctionCall     `json:"function_call,omitempty"`
	FunctionResponse *FunctionResponse `json:"function_response,omitempty"`
}

type FunctionCall struct {
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args"`
}

type FunctionResponse struct {
	Name     string                 `json:"name"`
	Response map[string]interface{} `json:"response"`
}
