package service

// User-facing text, in the faucet's language
const (
	MsgEnterKey       = "Por favor, insira sua chave privada."
	MsgInvalidKey     = "Chave privada inválida. Verifique o formato e tente novamente."
	MsgLoading        = "Carregando..."
	MsgBalanceError   = "Erro"
	MsgConnectFirst   = "Por favor, conecte sua carteira primeiro."
	MsgClaimReady     = "Pronto para cultivar!"
	MsgClaimCountdown = "Próximo cultivo em: "
	MsgClaimLabel     = "Cultivar Balbi"
	MsgClaimBusy      = "Cultivando..."
	MsgClaimSuccess   = "Tokens enviados com sucesso!"
	MsgClaimErrorFmt  = "Erro: %s"
	MsgClaimRetry     = "Erro ao tentar cultivar. Tente novamente mais tarde."
)
