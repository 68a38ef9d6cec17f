package service

// newsLexicon 新闻领域加权情感词表，取值范围 [-5,5]
var newsLexicon = map[string]float64{
	// 新闻正面词
	"breakthrough": 3,
	"success":      2,
	"achievement":  2,
	"progress":     2,
	"improvement":  2,
	"victory":      3,
	"milestone":    2,
	"innovation":   2,
	"solution":     2,
	"recovery":     2,

	// 新闻负面词
	"crisis":      -3,
	"disaster":    -3,
	"failure":     -2,
	"decline":     -2,
	"concern":     -1,
	"threat":      -2,
	"risk":        -1,
	"problem":     -1,
	"issue":       -1,
	"controversy": -2,

	// 通用正面词
	"good":        3,
	"great":       3,
	"excellent":   3,
	"amazing":     4,
	"outstanding": 5,
	"best":        3,
	"better":      2,
	"win":         4,
	"wins":        4,
	"won":         3,
	"winning":     4,
	"gain":        2,
	"gains":       2,
	"growth":      2,
	"boost":       1,
	"boosts":      1,
	"benefit":     2,
	"benefits":    2,
	"positive":    2,
	"optimistic":  2,
	"optimism":    2,
	"hope":        2,
	"hopeful":     2,
	"celebrate":   3,
	"celebrates":  3,
	"strong":      2,
	"stronger":    2,
	"improve":     2,
	"improves":    2,
	"improved":    2,
	"approve":     2,
	"approved":    2,
	"support":     2,
	"supports":    2,
	"praise":      3,
	"praised":     3,
	"happy":       3,
	"love":        3,
	"safe":        1,
	"secure":      2,
	"successful":  3,
	"thrive":      2,
	"thriving":    2,
	"record":      1,
	"rally":       2,
	"surge":       1,
	"opportunity": 2,
	"effective":   2,
	"advance":     1,
	"advances":    1,
	"agreement":   1,
	"peace":       2,
	"rescue":      2,
	"rescued":     2,
	"award":       3,
	"awarded":     3,
	"welcome":     2,
	"welcomed":    2,
	"stable":      1,
	"profit":      2,
	"profits":     2,
	"innovative":  2,
	"resilient":   2,

	// 通用负面词
	"bad":         -3,
	"worse":       -3,
	"worst":       -3,
	"terrible":    -3,
	"awful":       -3,
	"horrible":    -3,
	"lose":        -3,
	"loses":       -3,
	"loss":        -3,
	"losses":      -3,
	"lost":        -3,
	"fail":        -2,
	"fails":       -2,
	"failed":      -2,
	"crash":       -2,
	"crashes":     -2,
	"collapse":    -2,
	"collapsed":   -2,
	"war":         -2,
	"attack":      -1,
	"attacks":     -1,
	"killed":      -3,
	"kill":        -3,
	"death":       -2,
	"dead":        -3,
	"deaths":      -2,
	"injured":     -2,
	"fear":        -2,
	"fears":       -2,
	"worry":       -3,
	"worried":     -3,
	"warning":     -3,
	"warns":       -2,
	"danger":      -2,
	"dangerous":   -2,
	"fraud":       -4,
	"scandal":     -3,
	"lawsuit":     -2,
	"sued":        -2,
	"ban":         -2,
	"banned":      -2,
	"cut":         -1,
	"cuts":        -1,
	"layoffs":     -2,
	"recession":   -2,
	"inflation":   -1,
	"slump":       -2,
	"plunge":      -2,
	"plunges":     -2,
	"weak":        -2,
	"weaker":      -2,
	"conflict":    -2,
	"violence":    -3,
	"angry":       -3,
	"anger":       -3,
	"protest":     -2,
	"protests":    -2,
	"shortage":    -2,
	"delay":       -1,
	"delayed":     -1,
	"breach":      -2,
	"hack":        -1,
	"hacked":      -1,
	"vulnerable":  -2,
	"criticism":   -2,
	"criticized":  -2,
	"struggle":    -2,
	"struggles":   -2,
	"uncertainty": -1,
	"bankrupt":    -3,
	"bankruptcy":  -3,
}

// 否定词，修饰后一个情感词时取反
var negators = map[string]bool{
	"not":     true,
	"no":      true,
	"never":   true,
	"neither": true,
	"nobody":  true,
	"nowhere": true,
	"nothing": true,
	"none":    true,
	"don't":   true,
	"doesn't": true,
	"isn't":   true,
	"wasn't":  true,
	"aren't":  true,
	"won't":   true,
	"can't":   true,
	"cannot":  true,
}

// 计入语言特征的否定词
var negationWords = map[string]bool{
	"not":     true,
	"no":      true,
	"never":   true,
	"neither": true,
	"nobody":  true,
	"nowhere": true,
	"nothing": true,
	"none":    true,
}

// 程度副词
var intensifierWords = map[string]bool{
	"very":       true,
	"extremely":  true,
	"absolutely": true,
	"completely": true,
	"totally":    true,
	"entirely":   true,
	"highly":     true,
}
