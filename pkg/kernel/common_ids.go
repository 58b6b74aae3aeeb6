package kernel

type UserID string

func NewUserID(id string) UserID { return UserID(id) }
func (u UserID) String() string  { return string(u) }
func (u UserID) IsEmpty() bool   { return string(u) == "" }

// ConversationID identifies a conversation. The conversation itself is
// externally owned; the core only ever keys state by this id.
type ConversationID string

func NewConversationID(id string) ConversationID { return ConversationID(id) }
func (c ConversationID) String() string          { return string(c) }
func (c ConversationID) IsEmpty() bool           { return string(c) == "" }

// VersionID identifies a single historical snapshot of a ContextMap.
type VersionID string

func NewVersionID(id string) VersionID { return VersionID(id) }
func (v VersionID) String() string     { return string(v) }
func (v VersionID) IsEmpty() bool      { return string(v) == "" }
